// Code scaffolded by goctl. Safe to edit.
// goctl 1.9.2

package handler

import (
	"net/http"

	repair "github.com/joeblew999/plat-mailfix/internal/handler/repair"
	"github.com/joeblew999/plat-mailfix/internal/svc"

	"github.com/zeromicro/go-zero/rest"
)

func RegisterHandlers(server *rest.Server, serverCtx *svc.ServiceContext) {
	server.AddRoutes(
		[]rest.Route{
			{
				Method:  http.MethodPost,
				Path:    "/repair",
				Handler: repair.RepairHandler(serverCtx),
			},
			{
				Method:  http.MethodPost,
				Path:    "/buttons",
				Handler: repair.ButtonsHandler(serverCtx),
			},
			{
				Method:  http.MethodPost,
				Path:    "/download",
				Handler: repair.DownloadHandler(serverCtx),
			},
			{
				Method:  http.MethodPost,
				Path:    "/fixes/apply",
				Handler: repair.ApplyFixHandler(serverCtx),
			},
			{
				Method:  http.MethodPost,
				Path:    "/fixes/revert",
				Handler: repair.RevertFixHandler(serverCtx),
			},
			{
				Method:  http.MethodPost,
				Path:    "/problems/remove",
				Handler: repair.RemoveProblemHandler(serverCtx),
			},
		},
		rest.WithPrefix("/api/v1"),
		rest.WithMaxBytes(int64(serverCtx.Config.Limits.MaxBytes)*2),
	)
}
