// Code scaffolded by goctl. Safe to edit.
// goctl 1.9.2

package repair

import (
	"net/http"

	"github.com/joeblew999/plat-mailfix/internal/errorx"
	"github.com/joeblew999/plat-mailfix/internal/logic/repair"
	"github.com/joeblew999/plat-mailfix/internal/svc"
	"github.com/joeblew999/plat-mailfix/internal/types"
	"github.com/zeromicro/go-zero/rest/httpx"
)

func RepairHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.RepairRequest
		if err := httpx.Parse(r, &req); err != nil {
			httpx.ErrorCtx(r.Context(), w, errorx.ErrBadRequest(err.Error()))
			return
		}

		l := repair.NewRepairLogic(r.Context(), svcCtx)
		resp, err := l.Repair(&req)
		if err != nil {
			httpx.ErrorCtx(r.Context(), w, err)
		} else {
			httpx.OkJsonCtx(r.Context(), w, resp)
		}
	}
}
