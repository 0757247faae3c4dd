// Package translation fills in missing card translations using an LLM
// provider (OpenAI or Gemini). Calls go through a circuit breaker so that a
// failing provider is given up on after a few errors, and results are kept
// in a JSON cache so later runs do not ask again.
package translation
