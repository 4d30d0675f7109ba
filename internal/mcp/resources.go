package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"portfolio-advisor/internal/domain"
	"portfolio-advisor/internal/questionnaire"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func registerResources(server *mcp.Server, portfolios PortfolioReader, etfs ETFCatalog) {
	server.AddResource(&mcp.Resource{
		URI:         "questionnaire://questions",
		Name:        "questionnaire",
		Description: "Investor questionnaire with answer codes",
		MIMEType:    "application/json",
	}, func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		_ = ctx
		return jsonResource(req.Params.URI, questionnaireGetOutput{Questions: questionnaire.Questions()})
	})

	server.AddResource(&mcp.Resource{
		URI:         "catalog://etfs",
		Name:        "etf-catalog",
		Description: "Every ETF in the reference catalog",
		MIMEType:    "application/json",
	}, func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		if etfs == nil {
			return nil, fmt.Errorf("etf catalog unavailable")
		}
		return jsonResource(req.Params.URI, etfsListOutput{ETFs: etfs.List(domain.ETFFilter{Limit: maxETFLimit})})
	})

	server.AddResource(&mcp.Resource{
		URI:         "catalog://asset-classes",
		Name:        "asset-classes",
		Description: "Asset classes used by allocations and the ETF catalog",
		MIMEType:    "application/json",
	}, func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		_ = ctx
		return jsonResource(req.Params.URI, domain.AssetClasses)
	})

	server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: "portfolio://{id}",
		Name:        "portfolio-by-id",
		Description: "Stored portfolio with profile and allocation",
		MIMEType:    "application/json",
	}, func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		if portfolios == nil {
			return nil, fmt.Errorf("portfolio service unavailable")
		}

		parsed, err := url.Parse(req.Params.URI)
		if err != nil || parsed.Scheme != "portfolio" {
			return nil, mcp.ResourceNotFoundError(req.Params.URI)
		}
		id, err := normalizePortfolioID(parsed.Host + strings.TrimRight(parsed.Path, "/"))
		if err != nil {
			return nil, mcp.ResourceNotFoundError(req.Params.URI)
		}

		p, err := portfolios.GetPortfolio(ctx, id)
		if err != nil {
			return nil, err
		}
		return jsonResource(req.Params.URI, portfolioGetOutput{Portfolio: schemaPortfolio(p)})
	})

	server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: "catalog://etfs/{asset_class}",
		Name:        "etfs-by-asset-class",
		Description: "Catalog ETFs in one asset class",
		MIMEType:    "application/json",
	}, func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		if etfs == nil {
			return nil, fmt.Errorf("etf catalog unavailable")
		}

		parsed, err := url.Parse(req.Params.URI)
		if err != nil || parsed.Scheme != "catalog" || parsed.Host != "etfs" {
			return nil, mcp.ResourceNotFoundError(req.Params.URI)
		}
		filter, err := normalizeETFFilter(etfsListInput{
			AssetClass: strings.Trim(parsed.Path, "/"),
			Limit:      maxETFLimit,
		})
		if err != nil {
			return nil, err
		}
		return jsonResource(req.Params.URI, etfsListOutput{ETFs: etfs.List(filter)})
	})
}

func jsonResource(uri string, payload any) (*mcp.ReadResourceResult, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(body),
		}},
	}, nil
}
