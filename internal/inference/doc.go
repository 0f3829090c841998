// Package inference talks to model backends for classification. Two backend
// shapes are supported: an OpenAI-compatible chat completion API and a
// workspace chat API with server-side retrieval. Both return the same
// Result schema on the backend-native 0-1 confidence scale.
package inference
