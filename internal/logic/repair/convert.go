package repair

import (
	"github.com/joeblew999/plat-mailfix/internal/types"
	"github.com/joeblew999/plat-mailfix/pkg/check"
	"github.com/joeblew999/plat-mailfix/pkg/cta"
	"github.com/joeblew999/plat-mailfix/pkg/pipeline"
)

func toOptions(req *types.RepairRequest) pipeline.Options {
	return pipeline.Options{
		Checklist:         pipeline.Checklist(req.Checklist),
		PreheaderText:     req.PreheaderText,
		RemoveFonts:       req.RemoveFonts,
		TitleText:         req.TitleText,
		HeaderToken:       req.HeaderToken,
		FooterToken:       req.FooterToken,
		ThemeWrapperClass: req.ThemeWrapperClass,
		ThemeColor:        req.ThemeColor,
		Salutation:        req.Salutation,
	}
}

func fromResult(res *pipeline.Result) *types.RepairResponse {
	resp := &types.RepairResponse{
		Id:              res.ID,
		OptimizedHtml:   res.OptimizedHTML,
		Checks:          make([]types.Check, 0, len(res.Checks)),
		AutoFixes:       make([]types.AutoFix, 0, len(res.AutoFixes)),
		TagProblems:     make([]types.TagProblem, 0, len(res.TagProblems)),
		Confidence:      res.Confidence,
		ConfidenceLevel: string(res.ConfidenceLevel),
		AttentionItems:  res.AttentionItems,
		ElapsedMs:       res.Elapsed.Milliseconds(),
	}
	for _, c := range res.Checks {
		resp.Checks = append(resp.Checks, types.Check{Id: c.ID, Status: string(c.Status), Message: c.Message})
	}
	for _, f := range res.AutoFixes {
		resp.AutoFixes = append(resp.AutoFixes, fromFix(f))
	}
	for _, p := range res.TagProblems {
		resp.TagProblems = append(resp.TagProblems, types.TagProblem{
			Id:         p.ID,
			Type:       string(p.Type),
			Tag:        p.Tag,
			Position:   p.Position,
			LineNumber: p.LineNumber,
			Snippet:    p.Snippet,
			Severity:   p.Severity,
		})
	}
	if resp.AttentionItems == nil {
		resp.AttentionItems = []string{}
	}
	return resp
}

func toFix(f types.AutoFix) check.AutoFix {
	return check.AutoFix{
		ID:             f.Id,
		Tag:            f.Tag,
		InsertedText:   f.InsertedText,
		InsertPosition: f.InsertPosition,
		Confidence:     check.Confidence(f.Confidence),
		BoundaryTag:    f.BoundaryTag,
		OpenTagLine:    f.OpenTagLine,
		OpenTagSnippet: f.OpenTagSnippet,
		OpenPosition:   f.OpenPosition,
		Applied:        f.Applied,
		CoveredBy:      f.CoveredBy,
	}
}

func fromFix(f check.AutoFix) types.AutoFix {
	return types.AutoFix{
		Id:             f.ID,
		Tag:            f.Tag,
		InsertedText:   f.InsertedText,
		InsertPosition: f.InsertPosition,
		Confidence:     string(f.Confidence),
		BoundaryTag:    f.BoundaryTag,
		OpenTagLine:    f.OpenTagLine,
		OpenTagSnippet: f.OpenTagSnippet,
		OpenPosition:   f.OpenPosition,
		Applied:        f.Applied,
		CoveredBy:      f.CoveredBy,
	}
}

func toProblem(p types.TagProblem) check.TagProblem {
	return check.TagProblem{
		ID:         p.Id,
		Type:       check.ProblemType(p.Type),
		Tag:        p.Tag,
		Position:   p.Position,
		LineNumber: p.LineNumber,
		Snippet:    p.Snippet,
		Severity:   p.Severity,
	}
}

func fromButtons(buttons []cta.Button) []types.Button {
	out := make([]types.Button, 0, len(buttons))
	for _, b := range buttons {
		out = append(out, types.Button{
			Id:           b.ID,
			Type:         string(b.Type),
			Href:         b.Href,
			Text:         b.Text,
			BgColor:      b.BgColor,
			TextColor:    b.TextColor,
			Width:        b.Width,
			Height:       b.Height,
			BorderRadius: b.BorderRadius,
			FontSize:     b.FontSize,
			HasVml:       b.HasVML,
			VmlStatus:    string(b.VMLStatus),
		})
	}
	return out
}
