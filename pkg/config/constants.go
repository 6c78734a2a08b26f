package config

import "time"

const (
	DefaultPort                    = 8000
	DefaultSpeechRecognitionPath   = "/speech-recognition"
	DefaultSpeechRecognitionWSPath = "/ws/speech-recognition"
	DefaultObsSpeechOverlayPath    = "/obs-speech-overlay"
	DefaultObsSpeechOverlayWSPath  = "/ws/obs-speech-overlay"

	DefaultHeartbeatText     = "ping"
	DefaultHeartbeatInterval = 20 * time.Second

	DefaultTranscriptFile    = "./transcript.log"
	DefaultTimestampFormat   = "%Y-%m-%d %H:%M:%S"
	DefaultTranscriptSubject = "speech-relay.transcript"

	SpeechRecognitionTemplate = "speech-recognition"
	ObsSpeechOverlayTemplate  = "obs-speech-overlay"

	GasIdPlaceholder = "{gas_id}"

	DefaultVoicevoxHost  = "127.0.0.1"
	DefaultVoicevoxPort  = 50021
	DefaultSpeechWorkers = 1
)
