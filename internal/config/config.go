package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds application configuration
type Config struct {
	// Server
	HTTPAddr string
	LogLevel string

	// Gemini API
	GeminiAPIKey      string
	GeminiAPIEndpoint string // if set, overrides default Gemini API base URL (e.g. http://host.docker.internal:31300/gemini)
	GeminiModelPro    string
	GeminiModelFlash  string
	GeminiModelImage  string // image generation, e.g. gemini-3-pro-image-preview
	GeminiModelTTS    string // TTS model, e.g. gemini-2.5-pro-preview-tts
	GeminiTTSVoice    string // default TTS voice name, e.g. Zephyr, Puck, Aoede

	// Per-call timeouts. Narration is shortest because its input text is
	// truncated specifically to keep the call fast.
	TextTimeout       time.Duration
	TTSTimeout        time.Duration
	ImageTimeout      time.Duration
	TranscribeTimeout time.Duration

	// Processing
	MaxTopicLength    int // max topic length in characters
	NarrationMaxChars int // hard cap on narration script length
}

// Load loads configuration from environment variables
func Load() *Config {
	return &Config{
		HTTPAddr: getEnv("HTTP_ADDR", ":8080"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		GeminiAPIKey:      getEnv("GEMINI_API_KEY", ""),
		GeminiAPIEndpoint: getEnv("GEMINI_API_ENDPOINT", ""),
		GeminiModelPro:    getEnv("GEMINI_MODEL_PRO", "gemini-3-pro-preview"),
		GeminiModelFlash:  getEnv("GEMINI_MODEL_FLASH", "gemini-2.5-flash-lite"),
		GeminiModelImage:  getEnv("GEMINI_MODEL_IMAGE", "gemini-3-pro-image-preview"),
		GeminiModelTTS:    getEnv("GEMINI_MODEL_TTS", "gemini-2.5-pro-preview-tts"),
		GeminiTTSVoice:    getEnv("GEMINI_TTS_VOICE", "Zephyr"),

		TextTimeout:       getEnvDuration("TEXT_TIMEOUT", 60*time.Second),
		TTSTimeout:        getEnvDuration("TTS_TIMEOUT", 20*time.Second),
		ImageTimeout:      getEnvDuration("IMAGE_TIMEOUT", 30*time.Second),
		TranscribeTimeout: getEnvDuration("TRANSCRIBE_TIMEOUT", 30*time.Second),

		MaxTopicLength:    getEnvInt("MAX_TOPIC_LENGTH", 500),
		NarrationMaxChars: clampMin(getEnvInt("NARRATION_MAX_CHARS", 1500), 1),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// clampMin returns v if v >= min, otherwise min. Used to ensure config values are in valid range.
func clampMin(v, min int) int {
	if v < min {
		return min
	}
	return v
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
