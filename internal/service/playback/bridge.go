package playback

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	spotify "github.com/zmb3/spotify/v2"
	"golang.org/x/oauth2"
)

// ErrorKind categorizes playback failures the way the frontend reports them.
type ErrorKind string

const (
	ErrAuthentication ErrorKind = "authentication_error"
	ErrAccount        ErrorKind = "account_error"
	ErrInitialization ErrorKind = "initialization_error"
	ErrPlayback       ErrorKind = "playback_error"
)

var ErrNotConnected = errors.New("playback session not connected")

// Track is the simplified now-playing description surfaced to callers. Raw
// SDK objects never leave this package.
type Track struct {
	Name        string   `json:"name"`
	URI         string   `json:"uri"`
	Artists     []string `json:"artists"`
	AlbumName   string   `json:"albumName"`
	AlbumArtURL string   `json:"albumArtUrl,omitempty"`
}

// Snapshot is a serializable view of the playback state.
type Snapshot struct {
	Track      *Track `json:"track"`
	Paused     bool   `json:"paused"`
	PositionMS int    `json:"positionMs"`
	DurationMS int    `json:"durationMs"`
}

// Bridge adapts the Spotify Web API to the minimal play/pause/next/previous
// contract the orchestrator needs.
type Bridge struct {
	mu         sync.RWMutex
	client     *spotify.Client
	deviceID   *spotify.ID
	deviceName string
}

// NewBridge creates a disconnected bridge. deviceName selects the playback
// device to prefer when several are available.
func NewBridge(deviceName string) *Bridge {
	return &Bridge{deviceName: deviceName}
}

// Connect authenticates with the given user access token and resolves the
// playback device.
func (b *Bridge) Connect(ctx context.Context, accessToken string) error {
	if accessToken == "" {
		return fmt.Errorf("%s: empty access token", ErrAuthentication)
	}

	httpClient := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken}))
	client := spotify.New(httpClient)

	devices, err := client.PlayerDevices(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", Categorize(err), err)
	}

	var deviceID *spotify.ID
	for i := range devices {
		if devices[i].Name == b.deviceName || (deviceID == nil && devices[i].Active) {
			id := devices[i].ID
			deviceID = &id
		}
	}

	b.mu.Lock()
	b.client = client
	b.deviceID = deviceID
	b.mu.Unlock()

	if deviceID == nil {
		log.Printf("[playback] connected without an active device")
	} else {
		log.Printf("[playback] connected, device=%s", *deviceID)
	}
	return nil
}

// Connected reports whether a playback session is usable.
func (b *Bridge) Connected() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.client != nil
}

// Disconnect drops the session.
func (b *Bridge) Disconnect() {
	b.mu.Lock()
	b.client = nil
	b.deviceID = nil
	b.mu.Unlock()
}

func (b *Bridge) session() (*spotify.Client, *spotify.ID, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.client == nil {
		return nil, nil, ErrNotConnected
	}
	return b.client, b.deviceID, nil
}

// SearchAndPlay looks up the first track matching the query and starts it on
// the active device. Missing device or match is a logged no-op, not an error.
func (b *Bridge) SearchAndPlay(ctx context.Context, query string) error {
	client, deviceID, err := b.session()
	if err != nil {
		return err
	}
	if deviceID == nil {
		log.Printf("[playback] no active device, ignoring play request for %q", query)
		return nil
	}

	result, err := client.Search(ctx, query, spotify.SearchTypeTrack, spotify.Limit(1))
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}
	if result.Tracks == nil || len(result.Tracks.Tracks) == 0 {
		log.Printf("[playback] could not find a song for query: %s", query)
		return nil
	}

	uri := result.Tracks.Tracks[0].URI
	if err := client.PlayOpt(ctx, &spotify.PlayOptions{DeviceID: deviceID, URIs: []spotify.URI{uri}}); err != nil {
		return fmt.Errorf("play failed: %w", err)
	}
	return nil
}

// TogglePlay pauses when playing and resumes when paused.
func (b *Bridge) TogglePlay(ctx context.Context) error {
	client, _, err := b.session()
	if err != nil {
		return err
	}

	state, err := client.PlayerState(ctx)
	if err != nil {
		return fmt.Errorf("player state failed: %w", err)
	}
	if state.Playing {
		return client.Pause(ctx)
	}
	return client.Play(ctx)
}

// Next skips to the next track.
func (b *Bridge) Next(ctx context.Context) error {
	client, _, err := b.session()
	if err != nil {
		return err
	}
	return client.Next(ctx)
}

// Previous returns to the previous track.
func (b *Bridge) Previous(ctx context.Context) error {
	client, _, err := b.session()
	if err != nil {
		return err
	}
	return client.Previous(ctx)
}

// State returns the simplified playback snapshot.
func (b *Bridge) State(ctx context.Context) (Snapshot, error) {
	client, _, err := b.session()
	if err != nil {
		return Snapshot{}, err
	}

	state, err := client.PlayerState(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("player state failed: %w", err)
	}

	snap := Snapshot{
		Paused:     !state.Playing,
		PositionMS: int(state.Progress),
	}
	if state.Item != nil {
		track := &Track{
			Name:      state.Item.Name,
			URI:       string(state.Item.URI),
			AlbumName: state.Item.Album.Name,
		}
		for _, artist := range state.Item.Artists {
			track.Artists = append(track.Artists, artist.Name)
		}
		if len(state.Item.Album.Images) > 0 {
			track.AlbumArtURL = state.Item.Album.Images[0].URL
		}
		snap.Track = track
		snap.DurationMS = int(state.Item.Duration)
	}
	return snap, nil
}

// Categorize maps an SDK error onto the frontend's error taxonomy.
func Categorize(err error) ErrorKind {
	var spErr spotify.Error
	if errors.As(err, &spErr) {
		switch spErr.Status {
		case 401:
			return ErrAuthentication
		case 403:
			return ErrAccount
		}
	}
	if errors.Is(err, ErrNotConnected) {
		return ErrInitialization
	}
	return ErrPlayback
}
