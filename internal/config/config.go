package config

import (
	"github.com/zeromicro/go-zero/mcp"
	"github.com/zeromicro/go-zero/rest"

	"github.com/joeblew999/plat-mailfix/pkg/pipeline"
)

// Config holds the server configuration.
type Config struct {
	mcp.McpConf

	API      APIConfig      `json:",optional"`
	Pipeline PipelineConfig `json:",optional"`
	Limits   LimitsConfig   `json:",optional"`
}

// APIConfig holds the REST API server settings.
type APIConfig struct {
	rest.RestConf
}

// PipelineConfig holds the defaults applied to every repair request.
type PipelineConfig struct {
	Checklist         string `json:",default=standard,options=standard|themed"`
	HeaderToken       string `json:",default={{HEADER}}"`
	FooterToken       string `json:",default={{FOOTER}}"`
	ThemeWrapperClass string `json:",default=email-theme"`
	ThemeColor        string `json:",default=#ffffff"`
	TitleText         string `json:",optional"`
	Salutation        string `json:",optional"`
	RemoveFonts       bool   `json:",optional"`
}

// LimitsConfig bounds the work a single caller can request.
type LimitsConfig struct {
	MaxBytes  int `json:",default=1048576"`
	RateLimit int `json:",default=120"` // requests per minute, 0 for unlimited
}

// Options converts the pipeline defaults.
func (p PipelineConfig) Options() pipeline.Options {
	return pipeline.Options{
		Checklist:         pipeline.Checklist(p.Checklist),
		HeaderToken:       p.HeaderToken,
		FooterToken:       p.FooterToken,
		ThemeWrapperClass: p.ThemeWrapperClass,
		ThemeColor:        p.ThemeColor,
		TitleText:         p.TitleText,
		Salutation:        p.Salutation,
		RemoveFonts:       p.RemoveFonts,
	}
}

// ServiceConfig builds the pipeline service configuration.
func (c Config) ServiceConfig() pipeline.ServiceConfig {
	return pipeline.ServiceConfig{
		Defaults:  c.Pipeline.Options(),
		MaxBytes:  c.Limits.MaxBytes,
		RateLimit: c.Limits.RateLimit,
	}
}
