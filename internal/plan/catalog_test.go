package plan

import "testing"

func TestLimitReached(t *testing.T) {
	tests := []struct {
		name  string
		limit Limit
		count int
		want  bool
	}{
		{"below finite", Finite(3), 2, false},
		{"at finite", Finite(3), 3, true},
		{"above finite", Finite(3), 5, true},
		{"zero finite always reached", Finite(0), 0, true},
		{"unlimited never reached", Unlimited(), 1_000_000, false},
		{"unlimited at zero", Unlimited(), 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.limit.Reached(tt.count); got != tt.want {
				t.Errorf("Reached(%d) = %v, want %v", tt.count, got, tt.want)
			}
		})
	}
}

func TestLimitRemaining(t *testing.T) {
	if got := Finite(5).Remaining(2); got != 3 {
		t.Errorf("Remaining = %d, want 3", got)
	}
	if got := Finite(5).Remaining(9); got != 0 {
		t.Errorf("Remaining past limit = %d, want 0", got)
	}
	if got := Unlimited().Remaining(9); got != -1 {
		t.Errorf("unlimited Remaining = %d, want -1", got)
	}
}

func TestByNameFallsBackToFree(t *testing.T) {
	for _, name := range []string{"", "ENTERPRISE", "free", "pro_basic"} {
		p := ByName(name)
		if p.Name != NameFree {
			t.Errorf("ByName(%q).Name = %q, want FREE", name, p.Name)
		}
	}
}

// hasReached(P, c) must agree with c >= limitFor(P) for every finite plan,
// and never trip for unlimited plans.
func TestReachedMatchesLimitForAllPlans(t *testing.T) {
	for _, name := range []string{NameFree, NameProBasic, NameProPlus, NameCustom} {
		p := ByName(name)
		for c := 0; c < 200; c++ {
			want := !p.QuestionsPerSession.IsUnlimited() && c >= p.QuestionsPerSession.Value()
			if got := p.QuestionsPerSession.Reached(c); got != want {
				t.Fatalf("%s: Reached(%d) = %v, want %v", name, c, got, want)
			}
		}
	}
}

func TestUnknownPlanSharesFreeLimits(t *testing.T) {
	free := ByName(NameFree)
	unknown := ByName("NO_SUCH_PLAN")
	if unknown.QuestionsPerSession != free.QuestionsPerSession {
		t.Error("unknown plan question limit differs from FREE")
	}
	if unknown.SessionsPerDay != free.SessionsPerDay {
		t.Error("unknown plan session limit differs from FREE")
	}
}

func TestPurchasableOrder(t *testing.T) {
	plans := Purchasable()
	if len(plans) != 3 {
		t.Fatalf("len = %d, want 3", len(plans))
	}
	for i := 1; i < len(plans); i++ {
		if plans[i].Price < plans[i-1].Price {
			t.Errorf("plans out of price order: %s before %s", plans[i-1].Name, plans[i].Name)
		}
	}
}
