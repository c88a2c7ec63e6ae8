package ollama

const (
	DefaultEndpoint = "http://localhost:11434/api"
	DefaultModel    = "llama3.2:1b"
)
