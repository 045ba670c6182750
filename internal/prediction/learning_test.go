package prediction

import (
	"context"
	"errors"
	"testing"

	"github.com/riskibarqy/prediction-league/internal/domain/match"
	"github.com/riskibarqy/prediction-league/internal/platform/logging"
)

type stubLearningService struct {
	version    string
	versionErr error
	expected   ExpectedScore
	predictErr error
	gotVersion string
	gotType    string
}

func (s *stubLearningService) ActiveModelVersion(_ context.Context, modelType string) (string, error) {
	s.gotType = modelType
	return s.version, s.versionErr
}

func (s *stubLearningService) PredictScores(_ context.Context, _ match.Match, version string) (ExpectedScore, error) {
	s.gotVersion = version
	return s.expected, s.predictErr
}

func TestMachineLearning_RoundsByProfile(t *testing.T) {
	t.Parallel()

	cases := []struct {
		profile string
		want    Score
	}{
		{profile: "", want: Score{Home: 1, Away: 0}},
		{profile: "balanced", want: Score{Home: 1, Away: 0}},
		{profile: "aggressive", want: Score{Home: 2, Away: 1}},
		{profile: "conservative", want: Score{Home: 1, Away: 0}},
	}

	for _, tc := range cases {
		svc := &stubLearningService{version: "v7", expected: ExpectedScore{Home: 1.35, Away: 0.4}}
		strategy := NewMachineLearningStrategy(svc, &recordingStrategy{kind: KindFallback}, logging.NewNop())

		cfg, err := ParseConfig(KindMachineLearning, []byte(`{"profile":"`+tc.profile+`"}`))
		if err != nil {
			t.Fatalf("parse config: %v", err)
		}
		got, err := strategy.Predict(context.Background(), testMatch(), cfg)
		if err != nil {
			t.Fatalf("profile %q: unexpected error: %v", tc.profile, err)
		}
		if got != tc.want {
			t.Fatalf("profile %q: got %+v want %+v", tc.profile, got, tc.want)
		}
		if svc.gotVersion != "v7" || svc.gotType != defaultModelType {
			t.Fatalf("unexpected model call version=%q type=%q", svc.gotVersion, svc.gotType)
		}
	}
}

func TestMachineLearning_FallsBackOnServiceErrors(t *testing.T) {
	t.Parallel()

	for _, svc := range []*stubLearningService{
		{versionErr: errors.New("registry down")},
		{version: "v1", predictErr: errors.New("timeout")},
	} {
		fallback := &recordingStrategy{kind: KindFallback, score: Score{Home: 1, Away: 1}}
		strategy := NewMachineLearningStrategy(svc, fallback, logging.NewNop())

		got, err := strategy.Predict(context.Background(), testMatch(), Config{Kind: KindMachineLearning})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if fallback.calls != 1 || got != (Score{Home: 1, Away: 1}) {
			t.Fatalf("expected fallback result, got %+v", got)
		}
	}
}

func TestRoundWithThreshold_Clamps(t *testing.T) {
	t.Parallel()

	if got := roundWithThreshold(14.2, 0.5); got != maxLearningGoals {
		t.Fatalf("expected clamp to %d, got %d", maxLearningGoals, got)
	}
	if got := roundWithThreshold(-1, 0.5); got != 0 {
		t.Fatalf("expected 0 for negative, got %d", got)
	}
	if got := roundWithThreshold(2.3, 0.3); got != 3 {
		t.Fatalf("expected aggressive rounding up, got %d", got)
	}
}
