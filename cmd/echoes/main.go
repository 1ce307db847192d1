// Copyright 2025 The Echoes Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package main implements the echoes repeated word highlighter.

Echoes scans a text for words that occur more than once, ranks them by how
often they occur and gives every repeated word its own colour. The view is
recomputed on every edit: words that start repeating are added, words that
keep repeating are updated, and words that stop repeating fade out and are
purged after a short delay.

# Usage

Start the IPC server for an editor plugin (the default):

	echoes
	echoes serve -d

Type lines into a terminal and watch the repeats:

	echoes cli --min 4

Edit a file in the terminal editor, or follow a file edited elsewhere:

	echoes edit notes.md
	echoes watch notes.md

# Configuration

Runtime configuration lives in config.toml, in the first writable directory of
~/.config/echoes, ~/Library/Application Support/echoes and the directory of the
binary. It is created with defaults when it does not exist:

	[engine]
	min_word_length = 3
	tokenizer = "auto"
	purge_delay_ms = 400

	[layout]
	row_height = 3.0
	row_offset = 0.6

	[server]
	max_text_bytes = 1048576

	[cli]
	color = true
	show_overlay = true
	list_limit = 24

The --min and --tokenizer flags override the file for one run. The config
subcommands print, rebuild or update the file.

# IPC Protocol

The server speaks MessagePack over stdin/stdout. The client pushes text and
receives surface events followed by a response for each request:

	{"id": "r1", "a": "text", "text": "the cat and the dog and the cat"}
	{"ev": "upsert", "w": "the", "r": 0, "c": 3, "col": "hsl(20, 100%, 50%)"}
	{"id": "r1", "status": "ok", "c": 3, "t": 87}

See package server for the full list of actions.

# Command Line Flags

	--config string
	    Path to config.toml (default: ~/.config/echoes/config.toml)
	-d, --debug
	    Enable debug mode with detailed logging
	--min int
	    Minimum word length in characters
	--tokenizer string
	    Word pattern: auto, unicode or ascii

Logs always go to stderr, stdout belongs to the IPC stream or the terminal UI.
*/
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

const (
	Version = "0.1.0-beta"
	AppName = "echoes"
	gh      = "https://github.com/bastiangx/echoes"
)

// sigHandler is a simple handler for OS signals to exit normally.
// Modes that block on stdin use it; the others follow the command context.
func sigHandler() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		fmt.Fprintf(os.Stderr, "\nExiting...\n")
		os.Exit(0)
	}()
}

// main only builds the command tree and runs it.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		log.Errorf("%v", err)
		os.Exit(1)
	}
}

// showVersion prints the version banner.
func showVersion() {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportCaller:    false,
		ReportTimestamp: false,
		Prefix:          "",
	})

	styles := log.DefaultStyles()
	styles.Values["version"] = lipgloss.NewStyle().Bold(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
	styles.Values["gh"] = lipgloss.NewStyle().Italic(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
	logger.SetStyles(styles)

	logger.Print("")
	logger.Print("[ Echoes ] Spots the words you keep repeating")
	logger.Print("", "version", Version)
	logger.Print("")
	logger.Print("use -h or --help to see available options")
	logger.Print("Github Repo", "gh", gh)
}

// showStartupInfo displays some basic info about the server session on stderr.
func showStartupInfo(session, configPath string) {
	currentLevel := log.GetLevel()
	log.SetLevel(log.InfoLevel)

	println("===========")
	println("  Echoes   ")
	println("===========")
	log.Infof("Version: %s", Version)
	log.Infof("Process ID: [ %d ]", os.Getpid())
	log.Infof("Session: [ %s ]", session)
	log.Infof("config: ( %s )", configPath)
	log.Info("status: ready")
	println("===========")

	log.SetLevel(currentLevel)
}
