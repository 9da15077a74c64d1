package serving

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/pulsartrack/syncer/src/utils/config"
	"github.com/pulsartrack/syncer/src/utils/model"
	"github.com/pulsartrack/syncer/src/utils/soroban"

	"github.com/stellar/go/keypair"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

func TestRecorderTestSuite(t *testing.T) {
	suite.Run(t, new(RecorderTestSuite))
}

type RecorderTestSuite struct {
	suite.Suite
	ctx       context.Context
	config    *config.Config
	gateway   *fakeGateway
	warnings  chan *model.ServingWarning
	recorder  *Recorder
	publisher string
}

func (s *RecorderTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.config = config.Default()
	s.config.Contracts = config.Contracts{
		Orchestrator: "CORCHESTRATOR",
		Analytics:    "CANALYTICS",
		Escrow:       "CESCROW",
		Targeting:    "CTARGETING",
	}
	s.gateway = newFakeGateway()
	s.warnings = make(chan *model.ServingWarning, 10)
	signer, err := soroban.NewKeypairSigner(keypair.MustRandom().Seed())
	require.Nil(s.T(), err)
	s.publisher = signer.Address()

	s.recorder = NewRecorder(s.config).
		WithValidator(NewValidator(s.config).WithGateway(s.gateway)).
		WithGateway(s.gateway).
		WithSigner(signer).
		WithWarningChannel(s.warnings)
}

func (s *RecorderTestSuite) TestViewIsRecordedAfterValidation() {
	s.gateway.results["get_escrow"] = escrow("Active", 5000)

	decision, result, err := s.recorder.RecordView(s.ctx, 1, s.publisher)
	require.Nil(s.T(), err)
	require.Equal(s.T(), "abc", result.Hash)
	require.Equal(s.T(), []string{CheckEscrow, CheckTargeting}, decision.Checked)
	require.Equal(s.T(), []string{"CORCHESTRATOR.record_view"}, s.gateway.submits)
}

func (s *RecorderTestSuite) TestClickGoesToAnalytics() {
	s.gateway.results["get_escrow"] = escrow("Active", 5000)

	_, _, err := s.recorder.RecordClick(s.ctx, 1, s.publisher)
	require.Nil(s.T(), err)
	require.Equal(s.T(), []string{"CANALYTICS.record_click"}, s.gateway.submits)
}

func (s *RecorderTestSuite) TestRejectedServingIsNotRecorded() {
	s.gateway.results["get_escrow"] = escrow("Active", 0)

	_, _, err := s.recorder.RecordView(s.ctx, 1, s.publisher)
	require.ErrorIs(s.T(), err, ErrInsufficientEscrow)
	require.Empty(s.T(), s.gateway.submits)
}

func (s *RecorderTestSuite) TestOnlyTheSigningPublisherIsRecorded() {
	s.gateway.results["get_escrow"] = escrow("Active", 5000)
	s.gateway.results["get_targeting"] = targeting(500, "")
	s.gateway.results["get_targeting_score"] = score(100, "")
	other := keypair.MustRandom().Address()

	_, _, err := s.recorder.RecordView(s.ctx, 1, other)
	require.ErrorIs(s.T(), err, ErrPublisherMismatch)

	_, _, err = s.recorder.RecordClick(s.ctx, 1, other)
	require.ErrorIs(s.T(), err, ErrPublisherMismatch)

	// Rejected before validation, nothing read or stored
	require.Empty(s.T(), s.gateway.calls)
	require.Empty(s.T(), s.gateway.submits)
	require.Len(s.T(), s.warnings, 0)
}

func (s *RecorderTestSuite) TestRecordingRequiresSigner() {
	s.recorder.WithSigner(nil)

	_, _, err := s.recorder.RecordView(s.ctx, 1, s.publisher)
	require.ErrorIs(s.T(), err, soroban.ErrSignerRequired)
	require.Empty(s.T(), s.gateway.calls)
}

func (s *RecorderTestSuite) TestWarningsAreStoredOncePerWindow() {
	s.gateway.results["get_escrow"] = escrow("Active", 5000)
	s.gateway.results["get_targeting"] = targeting(500, "")
	s.gateway.results["get_targeting_score"] = score(100, "")

	for i := 0; i < 3; i++ {
		decision, _, err := s.recorder.RecordView(s.ctx, 1, s.publisher)
		require.Nil(s.T(), err)
		require.Len(s.T(), decision.Warnings, 1)
	}

	require.Len(s.T(), s.warnings, 1)
	warning := <-s.warnings
	require.Equal(s.T(), uint64(1), warning.CampaignId)
	require.Equal(s.T(), s.publisher, warning.Publisher)
	require.Equal(s.T(), model.ServingWarningReasonReputationBelowMinimum, warning.Reason)

	var details map[string]uint32
	require.Nil(s.T(), json.Unmarshal(warning.Details.Bytes, &details))
	require.Equal(s.T(), map[string]uint32{"score": 100, "minimum": 500}, details)

	// Other campaign is stored separately
	_, err := s.recorder.Validate(s.ctx, 2, s.publisher)
	require.Nil(s.T(), err)
	require.Len(s.T(), s.warnings, 1)
}
