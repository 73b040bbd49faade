package main

import (
	// Packages
	artifact "github.com/atagle123/AgentFace/pkg/artifact"
	httpclient "github.com/atagle123/AgentFace/pkg/httpclient"
	httphandler "github.com/atagle123/AgentFace/pkg/httphandler"
	version "github.com/atagle123/AgentFace/pkg/version"
)

////////////////////////////////////////////////////////////////////////////////
// TYPES

// Store configures where documents and videos are kept
type Store struct {
	Store string `name:"store" env:"ARTIFACT_STORE" default:"artifacts" help:"Artifact folder, or gs://bucket/prefix for a storage bucket"`
}

type WebCmd struct {
	Store      `embed:""`
	HTTP       `embed:""`
	Addr       string `name:"addr" env:"WEB_ADDR" default:"${web_addr}" help:"Listen address"`
	Summarizer string `name:"summarizer" env:"SUMMARIZER_URL" default:"http://${summarizer_addr}/api" help:"Summarization stage endpoint"`
	Video      string `name:"video" env:"VIDEO_URL" default:"http://${video_addr}/api" help:"Video stage endpoint"`
}

////////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

func (cmd *WebCmd) Run(globals *Globals) error {
	store, err := cmd.Store.open(globals)
	if err != nil {
		return err
	}

	// Remote stages
	summarizer, err := httpclient.New(cmd.Summarizer, clientOpts(globals)...)
	if err != nil {
		return err
	}
	generator, err := httpclient.New(cmd.Video, clientOpts(globals)...)
	if err != nil {
		return err
	}

	// Register the pages
	web, err := httphandler.NewWeb(store, summarizer, generator)
	if err != nil {
		return err
	}
	router := globals.router()
	paths := httphandler.RegisterWeb(router, web, version.Version())
	globals.log.DebugContext(globals.ctx, "web", "paths", len(paths), "summarizer", cmd.Summarizer, "video", cmd.Video)

	return cmd.HTTP.Serve(globals, "web", cmd.Addr, router)
}

////////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

func (cmd *Store) open(globals *Globals) (artifact.Store, error) {
	store, err := artifact.New(globals.ctx, cmd.Store)
	if err != nil {
		return nil, err
	}
	globals.log.InfoContext(globals.ctx, "artifacts", "store", cmd.Store)
	return store, nil
}
