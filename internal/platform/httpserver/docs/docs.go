// Package docs carries the OpenAPI document served at /swagger/doc.json.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/api/wallet/balance": {
            "get": {
                "tags": ["wallet"],
                "summary": "Current balance and reputation",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/wallet/deposit": {
            "post": {
                "tags": ["wallet"],
                "summary": "Instant coin credit",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/wallet/withdraw": {
            "post": {
                "tags": ["wallet"],
                "summary": "Instant coin debit",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/wallet/transactions": {
            "get": {
                "tags": ["wallet"],
                "summary": "Paginated transaction history",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/wallet/deposit-orders": {
            "post": {
                "tags": ["wallet"],
                "summary": "Open a pending deposit and prepare the gateway payload",
                "responses": {"201": {"description": "Created"}}
            }
        },
        "/api/wallet/transactions/{transaction_id}/sync": {
            "post": {
                "tags": ["wallet"],
                "summary": "Reconcile one pending deposit against the gateway",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/series": {
            "post": {
                "tags": ["funding"],
                "summary": "Create a series",
                "responses": {"201": {"description": "Created"}}
            }
        },
        "/api/videos": {
            "post": {
                "tags": ["funding"],
                "summary": "Create the next episode of a series",
                "responses": {"201": {"description": "Created"}}
            }
        },
        "/api/videos/{video_id}/pledge": {
            "post": {
                "tags": ["funding"],
                "summary": "Pledge coins toward an episode's funding pool",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/reviews/{review_id}/vote": {
            "post": {
                "tags": ["funding"],
                "summary": "Vote for a critic review",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/events": {
            "get": {
                "tags": ["stream"],
                "summary": "Server-sent event stream",
                "responses": {"200": {"description": "OK"}}
            }
        }
    }
}`

var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "reelfund API",
	Description:      "Ledger and funding-pool engine.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
