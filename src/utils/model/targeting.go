package model

import (
	"strings"
)

type TargetingConfig struct {
	CampaignId         uint64 `mapstructure:"campaign_id" json:"campaignId"`
	Advertiser         string `mapstructure:"advertiser" json:"advertiser"`
	GeographicTargets  string `mapstructure:"geographic_targets" json:"geographicTargets"`
	InterestSegments   string `mapstructure:"interest_segments" json:"interestSegments"`
	ExcludedSegments   string `mapstructure:"excluded_segments" json:"excludedSegments"`
	MinAge             uint32 `mapstructure:"min_age" json:"minAge"`
	MaxAge             uint32 `mapstructure:"max_age" json:"maxAge"`
	DeviceTypes        string `mapstructure:"device_types" json:"deviceTypes"`
	OperatingSystems   string `mapstructure:"operating_systems" json:"operatingSystems"`
	Languages          string `mapstructure:"languages" json:"languages"`
	MinReputationScore uint32 `mapstructure:"min_reputation_score" json:"minReputationScore"`
	ExcludeFraud       bool   `mapstructure:"exclude_fraud" json:"excludeFraud"`
	RequireKyc         bool   `mapstructure:"require_kyc" json:"requireKyc"`
	MaxCpm             int64  `mapstructure:"max_cpm" json:"maxCpm"`
	CreatedAt          uint64 `mapstructure:"created_at" json:"createdAt"`
	LastUpdated        uint64 `mapstructure:"last_updated" json:"lastUpdated"`
}

func (self *TargetingConfig) ExcludedSegmentList() []string {
	return SplitList(self.ExcludedSegments)
}

type TargetingScore struct {
	CampaignId   uint64 `mapstructure:"campaign_id" json:"campaignId"`
	Publisher    string `mapstructure:"publisher" json:"publisher"`
	Score        uint32 `mapstructure:"score" json:"score"`
	MatchReasons string `mapstructure:"match_reasons" json:"matchReasons"`
	ComputedAt   uint64 `mapstructure:"computed_at" json:"computedAt"`
}

func (self *TargetingScore) MatchReasonList() []string {
	return SplitList(self.MatchReasons)
}

// Contracts store lists as comma separated strings
func SplitList(s string) (out []string) {
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return
}
