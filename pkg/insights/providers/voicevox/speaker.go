package voicevox

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/goccy/go-json"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/mynaparrot/speech-relay/pkg/config"
	"github.com/mynaparrot/speech-relay/pkg/insights"
	"github.com/sirupsen/logrus"
)

const maxAudioSize = 32 << 20

// Player plays a complete WAV payload and returns when playback ends.
type Player interface {
	Play(ctx context.Context, wav []byte) error
}

// Speaker synthesizes text with a VOICEVOX engine and plays it locally.
type Speaker struct {
	baseUrl string
	voice   config.VoiceProfile
	client  *retryablehttp.Client
	player  Player
	logger  *logrus.Entry
}

func NewSpeaker(conf *config.VoicevoxConfig, player Player, log *logrus.Entry) (*Speaker, error) {
	if _, ok := conf.Voices[conf.UseVoice]; !ok {
		return nil, fmt.Errorf("voicevox voice %q is not configured", conf.UseVoice)
	}
	if player == nil {
		player = NewCommandPlayer(conf.PlayerCommand)
	}

	client := retryablehttp.NewClient()
	client.Logger = nil
	client.RetryMax = 1
	client.HTTPClient.Timeout = 30 * time.Second

	return &Speaker{
		baseUrl: strings.TrimRight(conf.BaseUrl(), "/"),
		voice:   conf.ActiveVoice(),
		client:  client,
		player:  player,
		logger:  log.WithField("voice", conf.UseVoice),
	}, nil
}

func (s *Speaker) Speak(ctx context.Context, text string) error {
	if strings.TrimSpace(text) == "" {
		return insights.ErrEmptyText
	}

	wav, err := s.Synthesize(ctx, text)
	if err != nil {
		return err
	}
	return s.player.Play(ctx, wav)
}

// Synthesize returns the WAV audio of text using the active voice profile.
func (s *Speaker) Synthesize(ctx context.Context, text string) ([]byte, error) {
	params := url.Values{}
	params.Set("text", text)
	params.Set("speaker", strconv.Itoa(s.voice.Speaker))

	queryBody, err := s.post(ctx, "/audio_query", params, nil)
	if err != nil {
		return nil, fmt.Errorf("audio_query failed: %w", err)
	}

	// keep every field of the query untouched except the overrides
	var query map[string]any
	if err = json.Unmarshal(queryBody, &query); err != nil {
		return nil, fmt.Errorf("invalid audio_query response: %w", err)
	}
	query["speedScale"] = s.voice.Speed
	query["pitchScale"] = s.voice.Pitch
	query["intonationScale"] = s.voice.Intonation
	query["volumeScale"] = s.voice.Volume

	payload, err := json.Marshal(query)
	if err != nil {
		return nil, err
	}

	synthParams := url.Values{}
	synthParams.Set("speaker", strconv.Itoa(s.voice.Speaker))
	wav, err := s.post(ctx, "/synthesis", synthParams, payload)
	if err != nil {
		return nil, fmt.Errorf("synthesis failed: %w", err)
	}

	if mt := mimetype.Detect(wav); !mt.Is("audio/wav") {
		return nil, fmt.Errorf("unexpected synthesis payload type: %s", mt.String())
	}
	return wav, nil
}

func (s *Speaker) post(ctx context.Context, path string, params url.Values, body []byte) ([]byte, error) {
	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, s.baseUrl+path+"?"+params.Encode(), rd)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, fmt.Errorf("http response code: %d, msg: %s", res.StatusCode, res.Status)
	}
	return io.ReadAll(io.LimitReader(res.Body, maxAudioSize))
}
