/*
Package generate owns the lifecycle of image generation requests.

# Overview

A Controller validates a prompt, hands out a Ticket, executes the request
and applies the outcome to its State. The three steps are split so an event
loop can run the network call elsewhere and apply the result on its own
goroutine:

	ticket, err := ctl.Submit(text, types.OriginInput) // state is InFlight
	result := ctl.Execute(ctx, ticket)                 // network only
	state, applied := ctl.Resolve(ticket, result)      // state, history, notices

Generate composes the three for synchronous callers.

# Resolution Policy

Several requests may be outstanding; none are cancelled or queued.

	LastResolved:  whichever response arrives last sets the visible state
	LatestRequest: responses to tickets older than the newest issued one
	               do not touch the visible state

Under both policies a successful response records its prompt in history,
since the image exists server-side either way.
*/
package generate
