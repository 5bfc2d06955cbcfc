// Code scaffolded by goctl. Safe to edit.
// goctl 1.9.2

package repair

import (
	"context"

	"github.com/joeblew999/plat-mailfix/internal/errorx"
	"github.com/joeblew999/plat-mailfix/internal/svc"
	"github.com/joeblew999/plat-mailfix/internal/types"

	"github.com/zeromicro/go-zero/core/logx"
)

type DownloadLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewDownloadLogic(ctx context.Context, svcCtx *svc.ServiceContext) *DownloadLogic {
	return &DownloadLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *DownloadLogic) Download(req *types.DownloadRequest) (resp *types.DownloadResponse, err error) {
	html, removed, err := l.svcCtx.Pipeline.Download(l.ctx, req.Html)
	if err != nil {
		return nil, errorx.FromService(err)
	}

	return &types.DownloadResponse{
		Html:    html,
		Removed: removed,
		Size:    len(html),
	}, nil
}
