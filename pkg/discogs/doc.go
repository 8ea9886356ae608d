// Package discogs provides a client library for the Discogs API v2.
//
// # Overview
//
// This package implements a Go client for the Discogs music database and
// marketplace. Its core is request dispatch: every call is signed, admitted
// by a throttle queue that keeps the client inside its call budget, and
// retried with exponential backoff when the server answers 429.
//
// # Installation
//
//	go get github.com/jfmyers9/crates/pkg/discogs
//
// # Quick Start
//
//	import "github.com/jfmyers9/crates/pkg/discogs"
//
//	client, err := discogs.NewClient(discogs.Config{
//	    Auth: discogs.NewTokenAuth("your-personal-access-token"),
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	release, resp, err := client.Database().GetRelease(ctx, 249504, "")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(release.Title, resp.RateLimit.Remaining)
//
// # Authentication
//
// Discogs accepts three kinds of credentials. Each gives an auth level that
// endpoints are checked against before any network call:
//
//   - NewKeyAuth: consumer key and secret, level AuthConsumer
//   - NewTokenAuth: personal access token, level AuthUser
//   - NewOAuth: OAuth 1.0a with a PLAINTEXT signature, AuthConsumer until an
//     access token is obtained, then AuthUser
//
// The OAuth handshake:
//
//	client, _ := discogs.NewClient(discogs.Config{
//	    Auth: discogs.NewOAuth("consumer-key", "consumer-secret", "", ""),
//	})
//	rt, err := client.OAuth().RequestToken(ctx, "")
//	fmt.Println("Please visit:", rt.AuthorizeURL)
//	// read the verifier shown to the user
//	auth, err := client.OAuth().AccessToken(ctx, rt, verifier)
//	// store auth.Token and auth.TokenSecret
//
// # Throttling
//
// A Queue admits at most RequestLimit calls (RequestLimitAuth when
// authenticated) in any rolling RequestLimitInterval. Calls over budget wait
// on a bounded stack and run in arrival order; a call arriving at a full
// stack fails with *RateLimitExceededError without touching the network.
//
// Each client gets its own queue unless Config.Queue is set. Pass the same
// *Queue to several clients to make them share one quota:
//
//	q := discogs.NewQueue(discogs.QueueConfig{MaxStack: 50})
//	a, _ := discogs.NewClient(discogs.Config{Queue: q, Auth: authA})
//	b, _ := discogs.NewClient(discogs.Config{Queue: q, Auth: authB})
//
// # Retries
//
// With BackoffMaxRetries > 0, a 429 answer is retried after
// BackoffInterval, then BackoffInterval*BackoffRate, and so on. Each retry
// goes through the queue again. When retries run out, the last 429 is
// returned as is.
//
// # Error Handling
//
//	_, _, err := client.Database().GetArtist(ctx, 1)
//	var apiErr *discogs.Error
//	switch {
//	case errors.Is(err, discogs.ErrAuthRequired):
//	    // authenticate first
//	case errors.Is(err, discogs.ErrRateLimitExceeded):
//	    // local queue is full
//	case errors.As(err, &apiErr):
//	    fmt.Println(apiErr.StatusCode, apiErr.Message)
//	}
//
// Network failures are returned as *TransportError and are never retried.
//
// # Context Support
//
// All API methods accept a context.Context. Cancelling it while a call waits
// for admission or for a backoff returns ctx.Err().
//
// # Discogs API Documentation
//
// https://www.discogs.com/developers
package discogs
