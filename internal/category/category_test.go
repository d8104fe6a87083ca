package category

import "testing"

func TestCategorize(t *testing.T) {
	tests := []struct {
		name       string
		identifier string
		title      string
		want       Category
	}{
		{
			name:       "sports by ticker",
			identifier: "KXNBAGAME-25NOV30LALBOS",
			title:      "Lakers vs Celtics",
			want:       Sports,
		},
		{
			name:       "sports by title keyword",
			identifier: "XYZ",
			title:      "Will the total points exceed 210?",
			want:       Sports,
		},
		{
			name:       "crypto by ticker",
			identifier: "KXBTCD-25NOV30",
			title:      "Price at noon?",
			want:       Crypto,
		},
		{
			name:       "crypto ticker in longer identifier",
			identifier: "KXETHD-25NOV30-T3500",
			title:      "Price at noon?",
			want:       Crypto,
		},
		{
			name:       "crypto word in title does not classify",
			identifier: "0xabc",
			title:      "Will Ethereum close above $5000?",
			want:       Other,
		},
		{
			name:       "eth inside ordinary title word stays politics",
			identifier: "0xpol1",
			title:      "Whether Trump wins reelection?",
			want:       Politics,
		},
		{
			name:       "eth inside ordinary title word stays out of crypto",
			identifier: "0xbudget",
			title:      "Will Congress act together on the budget?",
			want:       Politics,
		},
		{
			name:       "indices",
			identifier: "KXINXU",
			title:      "S&P 500 close above 6500?",
			want:       Indices,
		},
		{
			name:       "politics",
			identifier: "0xdef",
			title:      "Will Trump win the election?",
			want:       Politics,
		},
		{
			name:       "sports beats crypto when both match",
			identifier: "KXBTC",
			title:      "Bitcoin conference winner announced?",
			want:       Sports,
		},
		{
			name:       "sports beats politics when both match",
			identifier: "KXNFLGAME",
			title:      "Will Trump attend the game?",
			want:       Sports,
		},
		{
			name:       "unknown falls back to other",
			identifier: "KXWEATHER-25DEC01",
			title:      "High temperature in NYC above 50F?",
			want:       Other,
		},
		{
			name:       "empty input is other",
			identifier: "",
			title:      "",
			want:       Other,
		},
		{
			name:       "title matching is case insensitive",
			identifier: "0x123",
			title:      "TRUMP pardons announced before Friday?",
			want:       Politics,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Categorize(tt.identifier, tt.title)
			if got != tt.want {
				t.Errorf("Categorize(%q, %q) = %q, want %q", tt.identifier, tt.title, got, tt.want)
			}
		})
	}
}
