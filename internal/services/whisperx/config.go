package whisperx

// Config captures runtime settings for WhisperX operations.
type Config struct {
	// Model is the Whisper model size (e.g., "base", "large-v3").
	Model string
	// CUDAEnabled enables GPU acceleration.
	CUDAEnabled bool
	// UVXBinary is the uvx launcher used to run WhisperX.
	UVXBinary string
}

// WhisperX configuration constants.
const (
	DefaultModel    = "base"
	CUDAIndexURL    = "https://download.pytorch.org/whl/cu128"
	PypiIndexURL    = "https://pypi.org/simple"
	BatchSize       = "4"
	OutputFormat    = "json"
	CPUDevice       = "cpu"
	CUDADevice      = "cuda"
	CPUComputeType  = "float32"
	VADMethodSilero = "silero"
	UVXCommand      = "uvx"
)
