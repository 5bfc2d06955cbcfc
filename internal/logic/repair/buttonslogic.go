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

type ButtonsLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewButtonsLogic(ctx context.Context, svcCtx *svc.ServiceContext) *ButtonsLogic {
	return &ButtonsLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *ButtonsLogic) Buttons(req *types.ButtonsRequest) (resp *types.ButtonsResponse, err error) {
	buttons, err := l.svcCtx.Pipeline.Buttons(l.ctx, req.Html)
	if err != nil {
		return nil, errorx.FromService(err)
	}

	return &types.ButtonsResponse{
		Buttons: fromButtons(buttons),
		Count:   len(buttons),
	}, nil
}
