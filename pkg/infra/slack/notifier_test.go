package slack_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/tagpack/pkg/domain/model"
	"github.com/m-mizutani/tagpack/pkg/infra/slack"
)

func TestNotifier_NotifyReleases(t *testing.T) {
	var received map[string]any
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		body, err := io.ReadAll(r.Body)
		gt.NoError(t, err)
		gt.NoError(t, json.Unmarshal(body, &received))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}))
	defer server.Close()

	n, err := slack.New(server.URL, slack.WithChannel("#releases"))
	gt.NoError(t, err)

	results := []*model.ReleaseResult{
		{
			Ref:         "7.x-1.0",
			Version:     "7.x-1.0",
			ShortName:   "mywebform",
			Core:        "7.x",
			DownloadURL: "http://updates.example.com/files/mywebform/7.x-1.0.tar.gz",
			MD5:         "08a78d6c56a6a4daa9c943fe1ef3e270",
			Size:        39166,
			Date:        time.Unix(1472206272, 0),
		},
	}

	gt.NoError(t, n.NotifyReleases(context.Background(), results))
	gt.Number(t, calls).Equal(1)
	gt.Value(t, received["channel"]).Equal("#releases")
	gt.String(t, received["text"].(string)).Contains("Packaged 1 release(s) of mywebform")

	t.Run("empty run sends nothing", func(t *testing.T) {
		gt.NoError(t, n.NotifyReleases(context.Background(), nil))
		gt.Number(t, calls).Equal(1)
	})
}

func TestNotifier_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	n, err := slack.New(server.URL)
	gt.NoError(t, err)

	err = n.NotifyReleases(context.Background(), []*model.ReleaseResult{{ShortName: "mywebform"}})
	gt.Error(t, err)
}

func TestNew_RequiresURL(t *testing.T) {
	_, err := slack.New("")
	gt.Error(t, err)
}
