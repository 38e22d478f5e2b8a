// Package llm provides the inference service used to infer a shopper profile
// from an order narrative. It supports OpenAI and Anthropic, with retry logic,
// rate limiting, and reply caching layered on top of the raw providers.
package llm
