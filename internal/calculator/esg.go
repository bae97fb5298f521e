package calculator

import (
	"sort"

	"github.com/shopspring/decimal"

	"portfolio-analytics/internal/models"
)

// AggregateESG averages scores over the assets that report ESG data and
// sums the carbon and jobs figures that are present. Missing values are
// excluded, never counted as zero.
func AggregateESG(assets []models.Asset) models.ESGSummary {
	summary := models.ESGSummary{
		AverageEnvironmental: decimal.Zero,
		AverageSocial:        decimal.Zero,
		AverageGovernance:    decimal.Zero,
		AverageOverall:       decimal.Zero,
		TotalCarbonFootprint: decimal.Zero,
		Certifications:       []string{},
	}

	env, soc, gov, overall := decimal.Zero, decimal.Zero, decimal.Zero, decimal.Zero
	certs := make(map[string]struct{})
	for i := range assets {
		esg := assets[i].ESG
		if esg == nil {
			continue
		}
		summary.AssetsWithESG++
		env = env.Add(esg.EnvironmentalScore)
		soc = soc.Add(esg.SocialScore)
		gov = gov.Add(esg.GovernanceScore)
		overall = overall.Add(esg.OverallScore)
		if esg.CarbonFootprint != nil {
			summary.TotalCarbonFootprint = summary.TotalCarbonFootprint.Add(*esg.CarbonFootprint)
		}
		if esg.JobsCreated != nil {
			summary.TotalJobsCreated += *esg.JobsCreated
		}
		for _, c := range esg.Certifications {
			certs[c] = struct{}{}
		}
	}

	if summary.AssetsWithESG > 0 {
		n := decimal.NewFromInt(int64(summary.AssetsWithESG))
		summary.AverageEnvironmental = env.Div(n)
		summary.AverageSocial = soc.Div(n)
		summary.AverageGovernance = gov.Div(n)
		summary.AverageOverall = overall.Div(n)
	}

	for c := range certs {
		summary.Certifications = append(summary.Certifications, c)
	}
	sort.Strings(summary.Certifications)
	return summary
}
