// Package model abstracts the LLM providers that back helper agents. A helper
// receives the request description plus its bounded context package and
// returns structured analysis findings. Provider adapters live in the
// anthropic and openai subpackages; MockModel serves tests and demos.
package model
