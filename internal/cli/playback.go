package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	apperrors "github.com/tessro/spotify-cli/internal/errors"
	"github.com/tessro/spotify-cli/internal/spotify/client"
	"github.com/tessro/spotify-cli/internal/styles"
	"github.com/tessro/spotify-cli/internal/wizard"
)

// searchLimit is how many results the pickers offer.
const searchLimit = 10

var songCopy bool

var songCmd = &cobra.Command{
	Use:     "song",
	Aliases: []string{"current"},
	Short:   "Shows the current song playing on Spotify",
	Args:    cobra.NoArgs,
	RunE:    runSong,
}

var pauseCmd = &cobra.Command{
	Use:     "pause",
	Aliases: []string{"stop"},
	Short:   "Pauses the current song",
	Args:    cobra.NoArgs,
	RunE:    runPause,
}

var playCmd = &cobra.Command{
	Use:     "play [song...]",
	Aliases: []string{"resume"},
	Short:   "Resumes the current song, or plays the song specified",
	Long: `Without arguments, resumes playback. With arguments, searches for a
track and plays it. When several tracks match, a picker is shown
(in a terminal) or the best match is played.`,
	RunE: runPlay,
}

var skipCmd = &cobra.Command{
	Use:     "skip",
	Aliases: []string{"next"},
	Short:   "Skips the current song",
	Args:    cobra.NoArgs,
	RunE:    runSkip,
}

var backCmd = &cobra.Command{
	Use:     "back",
	Aliases: []string{"previous"},
	Short:   "Skips to the previous song",
	Args:    cobra.NoArgs,
	RunE:    runBack,
}

var playlistCmd = &cobra.Command{
	Use:     "playlist <playlist...>",
	Aliases: []string{"pl"},
	Short:   "Plays the specified playlist",
	Args:    cobra.MinimumNArgs(1),
	RunE:    runPlaylist,
}

var volumeCmd = &cobra.Command{
	Use:     "volume <percent>",
	Aliases: []string{"vol"},
	Short:   "Sets the volume to the specified value",
	Args:    cobra.ExactArgs(1),
	RunE:    runVolume,
}

func init() {
	songCmd.Flags().BoolVar(&songCopy, "copy", false, "copy the song link to the clipboard")

	rootCmd.AddCommand(songCmd)
	rootCmd.AddCommand(pauseCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(skipCmd)
	rootCmd.AddCommand(backCmd)
	rootCmd.AddCommand(playlistCmd)
	rootCmd.AddCommand(volumeCmd)
}

func runSong(cmd *cobra.Command, args []string) error {
	c, err := getClient()
	if err != nil {
		return err
	}

	cp, err := c.CurrentlyPlaying(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to get current song: %w", err)
	}
	if cp == nil || !cp.IsPlaying {
		return failure("not_playing", "Not playing anything!")
	}

	track := cp.Item
	link := track.ExternalURLs.Spotify
	if songCopy && link != "" {
		if err := clipboard.WriteAll(link); err != nil {
			logger.Warn("could not copy link", "err", err)
		}
	}

	if JSONOutput() {
		return printJSON(map[string]any{
			"status":      "playing",
			"artist":      track.ArtistNames(),
			"title":       track.Name,
			"album":       track.Album.Name,
			"duration_ms": track.DurationMS,
			"progress_ms": cp.ProgressMS,
			"uri":         track.URI,
			"link":        link,
		})
	}

	fmt.Println(styles.Good.Render("Currently playing:"))
	fmt.Println(styles.Box(
		styles.Field{Label: "Artist", Value: track.ArtistNames()},
		styles.Field{Label: "Title", Value: track.Name},
		styles.Field{Label: "Album", Value: track.Album.Name},
		styles.Field{Label: "Duration", Value: FormatDuration(track.DurationMS)},
		styles.Field{Label: "Current Seek", Value: FormatDuration(cp.ProgressMS)},
		styles.Field{Label: "Time Left", Value: FormatDuration(cp.RemainingMS())},
		styles.Field{Label: "Link", Value: link},
	))
	if songCopy && link != "" {
		fmt.Println(styles.Muted.Render("Link copied to clipboard."))
	}
	return nil
}

func runPause(cmd *cobra.Command, args []string) error {
	c, err := getClient()
	if err != nil {
		return err
	}
	if err := c.Pause(cmd.Context()); err != nil {
		return fmt.Errorf("failed to pause: %w", err)
	}
	return success("paused", "Paused!")
}

func runPlay(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	c, err := getClient()
	if err != nil {
		return err
	}

	if len(args) == 0 {
		if err := c.Play(ctx, nil); err != nil {
			if client.IsAlreadyPlayingError(err) {
				return success("playing", "Already playing!")
			}
			return fmt.Errorf("failed to resume: %w", err)
		}
		return success("playing", "Resumed!")
	}

	query := strings.Join(args, " ")
	tracks, err := c.SearchTracks(ctx, query, searchLimit)
	if err != nil {
		return fmt.Errorf("failed to search: %w", err)
	}
	if len(tracks) == 0 {
		return failure("not_found", "Couldn't find that song!")
	}

	items := make([]wizard.Item, len(tracks))
	for i, t := range tracks {
		items[i] = wizard.Item{Title: t.Name, Detail: t.ArtistNames()}
	}
	idx, err := choose("Which song would you like to play?", items)
	if err != nil {
		return err
	}
	if idx < 0 {
		return failure("cancelled", "Cancelled.")
	}
	track := tracks[idx]

	if err := c.PlayTrack(ctx, track.URI); err != nil {
		return fmt.Errorf("failed to play %q: %w", track.Name, err)
	}

	if JSONOutput() {
		return printJSON(map[string]any{
			"status":      "playing",
			"artist":      track.ArtistNames(),
			"title":       track.Name,
			"album":       track.Album.Name,
			"duration_ms": track.DurationMS,
			"uri":         track.URI,
			"link":        track.ExternalURLs.Spotify,
		})
	}

	fmt.Println(styles.Good.Render("Now playing:"))
	fmt.Println(styles.Box(
		styles.Field{Label: "Artist", Value: track.ArtistNames()},
		styles.Field{Label: "Title", Value: track.Name},
		styles.Field{Label: "Album", Value: track.Album.Name},
		styles.Field{Label: "Duration", Value: FormatDuration(track.DurationMS)},
		styles.Field{Label: "Link", Value: track.ExternalURLs.Spotify},
	))
	return nil
}

func runSkip(cmd *cobra.Command, args []string) error {
	c, err := getClient()
	if err != nil {
		return err
	}
	if err := c.Next(cmd.Context()); err != nil {
		return fmt.Errorf("failed to skip: %w", err)
	}
	return success("skipped", "Skipped!")
}

func runBack(cmd *cobra.Command, args []string) error {
	c, err := getClient()
	if err != nil {
		return err
	}
	if err := c.Previous(cmd.Context()); err != nil {
		return fmt.Errorf("failed to go back: %w", err)
	}
	return success("previous", "Skipped to previous track!")
}

func runPlaylist(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	c, err := getClient()
	if err != nil {
		return err
	}

	playlists, err := c.SearchPlaylists(ctx, strings.Join(args, " "), searchLimit)
	if err != nil {
		return fmt.Errorf("failed to search: %w", err)
	}
	if len(playlists) == 0 {
		return failure("not_found", "Couldn't find that playlist!")
	}

	items := make([]wizard.Item, len(playlists))
	for i, p := range playlists {
		items[i] = wizard.Item{Title: p.Name, Detail: p.Owner.DisplayName}
	}
	idx, err := choose("Which playlist would you like to play?", items)
	if err != nil {
		return err
	}
	if idx < 0 {
		return failure("cancelled", "Cancelled.")
	}
	pl := playlists[idx]

	if err := c.PlayContext(ctx, pl.URI); err != nil {
		return fmt.Errorf("failed to play %q: %w", pl.Name, err)
	}

	if JSONOutput() {
		return printJSON(map[string]string{
			"status": "playing",
			"name":   pl.Name,
			"uri":    pl.URI,
			"link":   pl.ExternalURLs.Spotify,
		})
	}

	fmt.Println(styles.Good.Render("Now playing:"))
	fmt.Println(styles.Box(
		styles.Field{Label: "Name", Value: pl.Name},
		styles.Field{Label: "Link", Value: pl.ExternalURLs.Spotify},
	))
	return nil
}

func runVolume(cmd *cobra.Command, args []string) error {
	percent, err := parseVolume(args[0])
	if err != nil {
		return err
	}

	c, err := getClient()
	if err != nil {
		return err
	}
	if err := c.SetVolume(cmd.Context(), percent); err != nil {
		return fmt.Errorf("failed to set volume: %w", err)
	}

	if JSONOutput() {
		return printJSON(map[string]any{"status": "volume_set", "volume": percent})
	}
	fmt.Println(styles.Good.Render(fmt.Sprintf("Volume set to %d%%!", percent)))
	return nil
}

func parseVolume(s string) (int, error) {
	percent, err := strconv.Atoi(strings.TrimSuffix(strings.TrimSpace(s), "%"))
	if err != nil || percent < 0 || percent > 100 {
		return 0, apperrors.WithSuggestion(
			fmt.Errorf("invalid volume %q", s),
			"Volume must be a whole number from 0 to 100",
		)
	}
	return percent, nil
}

// choose returns the index of the item to use. A single result, JSON output
// and non-terminal sessions skip the picker and take the first item.
func choose(title string, items []wizard.Item) (int, error) {
	if len(items) == 1 || JSONOutput() || !wizard.IsTerminal() {
		return 0, nil
	}
	idx, err := wizard.RunPicker(title, items)
	if err != nil {
		return -1, fmt.Errorf("picker failed: %w", err)
	}
	return idx, nil
}

// requirePlaying returns the current track or a reported "nothing playing".
func requirePlaying(cp *client.CurrentlyPlaying) (*client.Track, error) {
	if cp == nil || cp.Item == nil {
		return nil, errNothingPlaying
	}
	return cp.Item, nil
}

var errNothingPlaying = errors.New("nothing playing")
