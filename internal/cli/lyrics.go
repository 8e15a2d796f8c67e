package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	apperrors "github.com/tessro/spotify-cli/internal/errors"
	"github.com/tessro/spotify-cli/internal/lyrics"
	"github.com/tessro/spotify-cli/internal/styles"
)

var lyricsCmd = &cobra.Command{
	Use:     "lyrics",
	Aliases: []string{"ly"},
	Short:   "Searches for the lyrics of the currently playing song",
	Args:    cobra.NoArgs,
	RunE:    runLyrics,
}

func init() {
	rootCmd.AddCommand(lyricsCmd)
}

func runLyrics(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	c, err := getClient()
	if err != nil {
		return err
	}

	cp, err := c.CurrentlyPlaying(ctx)
	if err != nil {
		return fmt.Errorf("failed to get current song: %w", err)
	}
	track, err := requirePlaying(cp)
	if errors.Is(err, errNothingPlaying) {
		return failure("not_playing", "You're not listening to anything!")
	}

	text, err := lyrics.New(cfg.Lyrics.BaseURL, nil, logger).Find(ctx, track.PrimaryArtist(), track.Name)
	if err != nil {
		// Lookup failures of any kind are reported, not fatal.
		logger.Debug("lyrics lookup failed", "err", err, "not_found", errors.Is(err, apperrors.ErrNotFound))
		return failure("not_found", "Couldn't find lyrics!")
	}

	if JSONOutput() {
		return printJSON(map[string]string{
			"artist": track.PrimaryArtist(),
			"title":  track.Name,
			"lyrics": text,
		})
	}

	fmt.Println(styles.Good.Render("Lyrics:"))
	fmt.Println(styles.Text("", text))
	return nil
}
