// Package vision asks a vision-language model to describe item photos as
// structured evidence (category, brand and model guesses, materials,
// hazards). The mock describer serves local fixtures for offline runs; the
// live describer calls an OpenAI-compatible endpoint. Both fail soft.
package vision
