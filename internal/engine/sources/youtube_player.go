package sources

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/anatolykoptev/go_yttranslate/internal/engine"
)

// YouTube Innertube /player endpoint, ANDROID client. Only videoDetails is read.
const (
	ytPlayerURL      = "https://www.youtube.com/youtubei/v1/player"
	ytAndroidVersion = "20.10.38"
	ytAndroidUA      = "com.google.android.youtube/" + ytAndroidVersion + " (Linux; U; Android 11) gzip"
)

type playerReq struct {
	VideoID        string    `json:"videoId"`
	Context        playerCtx `json:"context"`
	RacyCheckOk    bool      `json:"racyCheckOk"`
	ContentCheckOk bool      `json:"contentCheckOk"`
}

type playerCtx struct {
	Client playerClient `json:"client"`
}

type playerClient struct {
	ClientName        string `json:"clientName"`
	ClientVersion     string `json:"clientVersion"`
	AndroidSdkVersion int    `json:"androidSdkVersion,omitempty"`
	Hl                string `json:"hl,omitempty"`
	Gl                string `json:"gl,omitempty"`
}

type playerResp struct {
	PlayabilityStatus *struct {
		Status string `json:"status"`
		Reason string `json:"reason"`
	} `json:"playabilityStatus"`
	VideoDetails *struct {
		Title         string `json:"title"`
		Author        string `json:"author"`
		LengthSeconds string `json:"lengthSeconds"`
	} `json:"videoDetails"`
}

func (m *YouTubeMeta) player(ctx context.Context, videoID string) (engine.VideoMeta, error) {
	engine.IncrMetadataLookups()

	body, err := json.Marshal(playerReq{
		VideoID: videoID,
		Context: playerCtx{Client: playerClient{
			ClientName:        "ANDROID",
			ClientVersion:     ytAndroidVersion,
			AndroidSdkVersion: 30,
			Hl:                "en",
			Gl:                "US",
		}},
		RacyCheckOk:    true,
		ContentCheckOk: true,
	})
	if err != nil {
		return engine.VideoMeta{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.playerURL+"?prettyPrint=false", bytes.NewReader(body))
	if err != nil {
		return engine.VideoMeta{}, fmt.Errorf("player request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", ytAndroidUA)
	req.Header.Set("X-Youtube-Client-Name", "3")
	req.Header.Set("X-Youtube-Client-Version", ytAndroidVersion)

	resp, err := m.client.Do(req)
	if err != nil {
		return engine.VideoMeta{}, fmt.Errorf("player fetch: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return engine.VideoMeta{}, fmt.Errorf("player HTTP %d: %s", resp.StatusCode, snippet)
	}

	var pr playerResp
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxMetaBody)).Decode(&pr); err != nil {
		return engine.VideoMeta{}, fmt.Errorf("player decode: %w", err)
	}
	if ps := pr.PlayabilityStatus; ps != nil && ps.Status != "OK" && pr.VideoDetails == nil {
		return engine.VideoMeta{}, fmt.Errorf("player: %s %s", ps.Status, ps.Reason)
	}
	if pr.VideoDetails == nil {
		return engine.VideoMeta{}, fmt.Errorf("player: no video details")
	}

	d := pr.VideoDetails
	meta := engine.VideoMeta{
		Title:   strings.TrimSpace(d.Title),
		Channel: strings.TrimSpace(d.Author),
	}
	if secs, err := strconv.Atoi(d.LengthSeconds); err == nil && secs > 0 {
		meta.Duration = formatDuration(secs)
	}
	return meta, nil
}

// formatDuration renders seconds as m:ss, or h:mm:ss for an hour or more.
func formatDuration(secs int) string {
	h, m, s := secs/3600, secs%3600/60, secs%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
