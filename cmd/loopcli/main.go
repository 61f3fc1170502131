// Package main provides a standalone loop player CLI for testing.
//
// It talks to the iTunes catalog directly (no credentials needed) and
// drives the loop engine against the real audio backend, without the
// server in between.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/joho/godotenv"
	zlog "github.com/rs/zerolog/log"

	"github.com/okmt/cliploop/internal/app/loop"
	"github.com/okmt/cliploop/internal/app/session"
	"github.com/okmt/cliploop/internal/domain/clip"
	"github.com/okmt/cliploop/internal/infra/audio"
	"github.com/okmt/cliploop/internal/infra/itunes"
	"github.com/okmt/cliploop/internal/infra/logger"
)

var (
	app     = kingpin.New("loopcli", "cliploop standalone loop player")
	verbose = app.Flag("verbose", "Enable verbose (DEBUG) logging").Short('v').Bool()
	country = app.Flag("country", "iTunes store country").Default("jp").String()
	fadeMs  = app.Flag("fade-ms", "Crossfade duration in milliseconds").Default("1500").Int()
	leadMs  = app.Flag("lead-ms", "Crossfade lead time in milliseconds").Default("2500").Int()

	// search command
	searchCmd   = app.Command("search", "Search the iTunes catalog")
	searchQuery = searchCmd.Arg("query", "Search query").Required().String()

	// play command
	playCmd   = app.Command("play", "Loop the first matching clip")
	playQuery = playCmd.Arg("query", "Search query").Required().String()
)

func main() {
	// Load .env file if it exists (errors are ignored)
	_ = godotenv.Load()

	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	level := "info"
	if *verbose {
		level = "debug"
	}
	if err := logger.Init(logger.Config{Level: level, Output: "stderr"}); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}

	ctx := context.Background()
	client := itunes.New(itunes.Config{Country: *country})

	switch command {
	case searchCmd.FullCommand():
		search(ctx, client, *searchQuery)
	case playCmd.FullCommand():
		play(ctx, client, *playQuery)
	}
}

func search(ctx context.Context, client *itunes.Client, query string) {
	clips, err := client.SearchClips(ctx, query, 20)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	for i, c := range clips {
		marker := " "
		if !c.Playable() {
			marker = "x"
		}
		fmt.Printf("%2d %s %s - %s (%s) [%s]\n", i+1, marker, c.Artist, c.Title, c.Album, c.Duration.Round(time.Second))
	}
}

func play(ctx context.Context, client *itunes.Client, query string) {
	clips, err := client.SearchClips(ctx, query, 20)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	var selected clip.Clip
	found := false
	for _, c := range clips {
		if c.Playable() {
			selected = c
			found = true
			break
		}
	}
	if !found {
		fmt.Println("No playable clip found")
		os.Exit(1)
	}

	if err := audio.InitSpeaker(); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	fetcher := audio.NewFetcher()
	coord, err := loop.NewCoordinator(loop.Config{
		FadeDuration: time.Duration(*fadeMs) * time.Millisecond,
		LeadTime:     time.Duration(*leadMs) * time.Millisecond,
	}, audio.NewChannel(fetcher), audio.NewChannel(fetcher))
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	mgr := session.NewManager(coord)
	defer mgr.Close()

	fmt.Printf("Looping: %s - %s (%s)\n", selected.Artist, selected.Title, selected.Duration.Round(time.Second))
	if err := mgr.Select(selected); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	go printEvents(mgr)

	fmt.Println("Press Enter to toggle pause, Ctrl+C to quit.")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	stdin := make(chan struct{})
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			stdin <- struct{}{}
		}
	}()

	for {
		select {
		case <-sigCh:
			fmt.Println("\nStopping...")
			mgr.Stop()
			return
		case <-stdin:
			if err := mgr.Toggle(selected); err != nil {
				zlog.Warn().Msgf("toggle failed: %v", err)
			}
			if mgr.Paused() {
				fmt.Println("Paused")
			} else {
				fmt.Println("Playing")
			}
		}
	}
}

func printEvents(mgr *session.Manager) {
	for ev := range mgr.Events() {
		switch ev.Type {
		case loop.EventCrossfadeStarted:
			fmt.Printf("  [loop] crossfade at %s\n", mgr.Elapsed().Round(100*time.Millisecond))
		case loop.EventSourceFailed:
			fmt.Println("  [loop] source failed")
		}
	}
}
