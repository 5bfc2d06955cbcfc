// Code scaffolded by goctl. Safe to edit.
// goctl 1.9.2

package svc

import (
	"github.com/joeblew999/plat-mailfix/internal/config"
	"github.com/joeblew999/plat-mailfix/pkg/mjml"
	"github.com/joeblew999/plat-mailfix/pkg/pipeline"
)

type ServiceContext struct {
	Config   config.Config
	Pipeline *pipeline.Service
	Renderer *mjml.Renderer
}

func NewServiceContext(c config.Config) *ServiceContext {
	return &ServiceContext{
		Config:   c,
		Pipeline: pipeline.NewService(c.ServiceConfig()),
		Renderer: mjml.NewRenderer(mjml.WithCache(true)),
	}
}
