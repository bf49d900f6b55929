// Package fundingpoolservice implements the crowdfunding engine inside the
// video-economy context.
//
// Each episode carries its own funding pool. Viewers pledge coins toward the
// pool; the pledge that crosses the threshold triggers the revenue
// distribution, releasing the episode and paying the author a share shaped by
// executed critic reviews. Series, episode, and review lifecycle live here
// too. Every multi-row state change runs as one atomic repository unit,
// with durable events staged through a transactional outbox.
package fundingpoolservice
