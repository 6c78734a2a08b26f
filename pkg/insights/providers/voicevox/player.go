package voicevox

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
)

// CommandPlayer writes the audio to a temporary file and runs an external
// player with the file path as its last argument.
type CommandPlayer struct {
	command []string
}

func NewCommandPlayer(command []string) *CommandPlayer {
	return &CommandPlayer{command: command}
}

func (p *CommandPlayer) Play(ctx context.Context, wav []byte) error {
	if len(p.command) == 0 {
		return errors.New("no player command configured")
	}

	f, err := os.CreateTemp("", "speech-relay-*.wav")
	if err != nil {
		return err
	}
	defer os.Remove(f.Name())

	if _, err = f.Write(wav); err != nil {
		_ = f.Close()
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}

	args := append(append([]string{}, p.command[1:]...), f.Name())
	cmd := exec.CommandContext(ctx, p.command[0], args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("player %s failed: %w: %s", p.command[0], err, out)
	}
	return nil
}
