package voicevox

import (
	"context"
	"encoding/binary"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/goccy/go-json"
	"github.com/mynaparrot/speech-relay/pkg/config"
	"github.com/mynaparrot/speech-relay/pkg/insights"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePlayer struct {
	played [][]byte
}

func (f *fakePlayer) Play(ctx context.Context, wav []byte) error {
	f.played = append(f.played, wav)
	return nil
}

func wavHeader() []byte {
	b := make([]byte, 44)
	copy(b[0:], "RIFF")
	binary.LittleEndian.PutUint32(b[4:], 36)
	copy(b[8:], "WAVEfmt ")
	binary.LittleEndian.PutUint32(b[16:], 16)
	binary.LittleEndian.PutUint16(b[20:], 1)
	binary.LittleEndian.PutUint16(b[22:], 1)
	binary.LittleEndian.PutUint32(b[24:], 24000)
	binary.LittleEndian.PutUint32(b[28:], 48000)
	binary.LittleEndian.PutUint16(b[32:], 2)
	binary.LittleEndian.PutUint16(b[34:], 16)
	copy(b[36:], "data")
	return b
}

func testLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func newTestSpeaker(t *testing.T, srv *httptest.Server, player Player) *Speaker {
	host, port, err := net.SplitHostPort(srv.Listener.Addr().String())
	require.NoError(t, err)
	p, err := strconv.Atoi(port)
	require.NoError(t, err)

	conf := &config.VoicevoxConfig{
		Host:     host,
		Port:     p,
		UseVoice: "female",
		Voices: map[string]config.VoiceProfile{
			"female": {Speaker: 3, Speed: 1.2, Pitch: 0.05, Intonation: 1.1, Volume: 0.8},
		},
	}
	s, err := NewSpeaker(conf, player, testLogger())
	require.NoError(t, err)
	return s
}

func TestSpeaker_Speak(t *testing.T) {
	var synthQuery map[string]any
	var querySpeaker, synthSpeaker, queryText string

	mux := http.NewServeMux()
	mux.HandleFunc("/audio_query", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		queryText = r.URL.Query().Get("text")
		querySpeaker = r.URL.Query().Get("speaker")
		_, _ = w.Write([]byte(`{"accent_phrases":[],"speedScale":1,"pitchScale":0,"intonationScale":1,"volumeScale":1,"outputSamplingRate":24000}`))
	})
	mux.HandleFunc("/synthesis", func(w http.ResponseWriter, r *http.Request) {
		synthSpeaker = r.URL.Query().Get("speaker")
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &synthQuery)
		_, _ = w.Write(wavHeader())
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	player := &fakePlayer{}
	s := newTestSpeaker(t, srv, player)

	require.NoError(t, s.Speak(context.Background(), "テストです"))

	assert.Equal(t, "テストです", queryText)
	assert.Equal(t, "3", querySpeaker)
	assert.Equal(t, "3", synthSpeaker)
	assert.Equal(t, 1.2, synthQuery["speedScale"])
	assert.Equal(t, 0.05, synthQuery["pitchScale"])
	assert.Equal(t, 1.1, synthQuery["intonationScale"])
	assert.Equal(t, 0.8, synthQuery["volumeScale"])
	assert.Equal(t, float64(24000), synthQuery["outputSamplingRate"])
	require.Len(t, player.played, 1)
	assert.Equal(t, wavHeader(), player.played[0])
}

func TestSpeaker_RejectsNonWav(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/audio_query", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	})
	mux.HandleFunc("/synthesis", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"detail":"engine error"}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	player := &fakePlayer{}
	s := newTestSpeaker(t, srv, player)

	err := s.Speak(context.Background(), "テスト")
	assert.ErrorContains(t, err, "unexpected synthesis payload")
	assert.Empty(t, player.played)
}

func TestSpeaker_EmptyText(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	s := newTestSpeaker(t, srv, &fakePlayer{})
	assert.ErrorIs(t, s.Speak(context.Background(), "  "), insights.ErrEmptyText)
}

func TestSpeaker_EngineError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	s := newTestSpeaker(t, srv, &fakePlayer{})
	assert.ErrorContains(t, s.Speak(context.Background(), "x"), "audio_query failed")
}

func TestNewSpeaker_UnknownVoice(t *testing.T) {
	_, err := NewSpeaker(&config.VoicevoxConfig{UseVoice: "male"}, &fakePlayer{}, testLogger())
	assert.Error(t, err)
}
