package mcp

import (
	"context"
	"fmt"

	"portfolio-advisor/internal/domain"
	"portfolio-advisor/internal/questionnaire"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func registerTools(server *mcp.Server, portfolios PortfolioReader, etfs ETFCatalog) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "questionnaire_get",
		Description: "Get the investor questionnaire with every question and its answer codes",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, _ questionnaireGetInput) (*mcp.CallToolResult, questionnaireGetOutput, error) {
		return nil, questionnaireGetOutput{Questions: questionnaire.Questions()}, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "profile_build",
		Description: "Score questionnaire answers into an investor profile without storing anything",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in answersInput) (*mcp.CallToolResult, profileBuildOutput, error) {
		profile, err := questionnaire.BuildProfile(questionnaire.Answers(in.Answers))
		if err != nil {
			return nil, profileBuildOutput{}, err
		}
		return nil, profileBuildOutput{Profile: schemaProfile(profile)}, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "allocation_compute",
		Description: "Compute the asset allocation for questionnaire answers without storing anything",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in answersInput) (*mcp.CallToolResult, allocationComputeOutput, error) {
		if portfolios == nil {
			return nil, allocationComputeOutput{}, fmt.Errorf("portfolio service unavailable")
		}
		profile, alloc, err := portfolios.Preview(ctx, questionnaire.Answers(in.Answers))
		if err != nil {
			return nil, allocationComputeOutput{}, err
		}
		return nil, allocationComputeOutput{Profile: schemaProfile(profile), Allocation: alloc}, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "portfolio_get",
		Description: "Get a stored portfolio with its profile and allocation",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in portfolioGetInput) (*mcp.CallToolResult, portfolioGetOutput, error) {
		if portfolios == nil {
			return nil, portfolioGetOutput{}, fmt.Errorf("portfolio service unavailable")
		}
		id, err := normalizePortfolioID(in.ID)
		if err != nil {
			return nil, portfolioGetOutput{}, err
		}
		p, err := portfolios.GetPortfolio(ctx, id)
		if err != nil {
			return nil, portfolioGetOutput{}, err
		}
		return nil, portfolioGetOutput{Portfolio: schemaPortfolio(p)}, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "etfs_list",
		Description: "List catalog ETFs with optional asset class and text filters",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in etfsListInput) (*mcp.CallToolResult, etfsListOutput, error) {
		if etfs == nil {
			return nil, etfsListOutput{}, fmt.Errorf("etf catalog unavailable")
		}
		filter, err := normalizeETFFilter(in)
		if err != nil {
			return nil, etfsListOutput{}, err
		}
		return nil, etfsListOutput{ETFs: etfs.List(filter)}, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "etfs_compare",
		Description: "Compare two to four ETFs side by side",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in etfsCompareInput) (*mcp.CallToolResult, domain.ETFComparison, error) {
		if etfs == nil {
			return nil, domain.ETFComparison{}, fmt.Errorf("etf catalog unavailable")
		}
		cmp, err := etfs.Compare(in.Tickers)
		if err != nil {
			return nil, domain.ETFComparison{}, err
		}
		return nil, cmp, nil
	})
}
