// Command files_smoke exercises a running backend end to end: fetch an
// identity, register in a group, upload a file, refresh the list and
// download the bytes back.
package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/smolyakov/huddle/internal/client/files"
	"github.com/smolyakov/huddle/internal/client/state"
	logpkg "github.com/smolyakov/huddle/internal/log"
)

func main() {
	addr := flag.String("addr", "http://localhost:8080", "backend base URL")
	group := flag.String("group", "smoke", "group id to join")
	name := flag.String("name", "smoke.txt", "file name to upload")
	text := flag.String("text", "hello from smoke test", "file content to upload")
	timeout := flag.Duration("timeout", 10*time.Second, "total timeout for the run")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	logger := logpkg.New("info", true)
	store := state.NewStore(logger)
	go store.Run(ctx)

	client := files.New(*addr, http.DefaultClient, store, logger)

	if err := client.FetchToken(ctx); err != nil {
		log.Fatalf("fetch token: %v", err)
	}
	store.Dispatch(state.GroupJoined{GroupID: *group})

	if err := client.Register(ctx); err != nil {
		log.Fatalf("register: %v", err)
	}
	if err := client.Upload(ctx, *name, []byte(*text)); err != nil {
		log.Fatalf("upload: %v", err)
	}
	if err := client.Refresh(ctx); err != nil {
		log.Fatalf("refresh: %v", err)
	}

	snap := store.Snapshot()
	if len(snap.Files) == 0 {
		log.Fatal("no files listed after upload")
	}

	newest := snap.Files[0]
	if err := client.Download(ctx, newest.Meta.ID); err != nil {
		log.Fatalf("download: %v", err)
	}

	rec, ok := store.Snapshot().FileByID(newest.Meta.ID)
	if !ok || rec.Phase() != state.FilePhaseAvailable {
		log.Fatalf("file %s not available after download", newest.Meta.ID)
	}
	if newest.Meta.Name == *name && !bytes.Equal(rec.Content, []byte(*text)) {
		log.Fatalf("content mismatch: got %q", rec.Content)
	}

	fmt.Printf("ok: user=%s group=%s file=%s (%d bytes)\n",
		snap.UserID, snap.GroupID, newest.Meta.Name, len(rec.Content))
}
