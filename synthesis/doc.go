// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package synthesis groups and summarizes free-text answers through a language
model and caches the result per question.

# Controller

Controller holds at most one SynthesisRecord per question and allows one
outstanding call at a time:

	ctrl := synthesis.NewController(synth)
	record, err := ctrl.Run(ctx, questionID, models.SynthesisRequest{
		Question: prompt,
		Items:    synthesis.EligibleItems(values),
		Mode:     synthesis.ModeFor(questionType),
	})

Errors:

  - ErrInFlight: another call is outstanding; the collaborator is not called
  - ErrNoItems: nothing left after trimming
  - ErrSuperseded: SetQuestion moved the controller while the call ran

A record is stale when its SourceCount differs from the current number of
eligible answers. Staleness is a hint; the record is never dropped for it.

# OpenAI

OpenAISynthesizer sends at most MaxItems answers with a strict JSON schema
response format. When a token budget is configured the batch is cut to fit
using the o200k_base encoding.
*/
package synthesis
