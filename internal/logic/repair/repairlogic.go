// Code scaffolded by goctl. Safe to edit.
// goctl 1.9.2

package repair

import (
	"context"

	"github.com/joeblew999/plat-mailfix/internal/errorx"
	"github.com/joeblew999/plat-mailfix/internal/svc"
	"github.com/joeblew999/plat-mailfix/internal/types"
	"github.com/joeblew999/plat-mailfix/pkg/mjml"

	"github.com/zeromicro/go-zero/core/logx"
)

type RepairLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewRepairLogic(ctx context.Context, svcCtx *svc.ServiceContext) *RepairLogic {
	return &RepairLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *RepairLogic) Repair(req *types.RepairRequest) (resp *types.RepairResponse, err error) {
	html := req.Html
	if mjml.IsSource("", html) {
		if html, err = l.svcCtx.Renderer.RenderString(html); err != nil {
			return nil, errorx.ErrBadRequest("invalid mjml: " + err.Error())
		}
	}

	res, err := l.svcCtx.Pipeline.Repair(l.ctx, html, toOptions(req))
	if err != nil {
		return nil, errorx.FromService(err)
	}

	l.Infow("template repaired",
		logx.Field("id", res.ID),
		logx.Field("confidence", res.Confidence),
		logx.Field("checks", len(res.Checks)),
	)
	return fromResult(res), nil
}
