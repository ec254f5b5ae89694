// Package model defines the language-understanding capability contract the
// orchestrator depends on. The interpreter and synthesizer treat "interpret
// transcript" and "phrase summary" as single request/response capability
// calls; streaming is deliberately out of scope for this contract.
//
// Provider-specific adapters live in subpackages (anthropic, openai, bedrock)
// and normalize vendor APIs behind model.Model. MockModel supports tests and
// examples without network access.
package model
