package sandwich

import (
	"sort"
	"time"

	"sandwichcheck/config"
	"sandwichcheck/types"
	"sandwichcheck/utils"

	"github.com/shopspring/decimal"
)

// Aggregator folds attacks into a WalletReport. Given the same attacks and price it always
// produces the same report apart from AnalyzedAt.
type Aggregator struct {
	Now            func() time.Time
	Location       *time.Location // week boundaries are local midnights in this location
	TopAttackers   int
	AnalysisWindow time.Duration // default time range when there are no attacks
}

func NewAggregator() *Aggregator {
	return &Aggregator{
		Now:            time.Now,
		Location:       time.Local,
		TopAttackers:   config.REPORT_TOP_ATTACKERS,
		AnalysisWindow: config.ANALYSIS_WINDOW,
	}
}

func (a *Aggregator) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

func (a *Aggregator) Aggregate(wallet string, attacks types.SandwichAttacks, solPriceUSD float64) *types.WalletReport {
	loc := a.Location
	if loc == nil {
		loc = time.Local
	}
	analyzedAt := a.now()

	report := &types.WalletReport{
		Wallet:            wallet,
		SolPriceUSD:       solPriceUSD,
		AttackCount:       len(attacks),
		TotalLossLamports: decimal.Zero,
		AttacksByDex:      make(map[string]types.DexStat),
		AttacksByWeek:     make([]types.WeekStat, 0),
		AttacksByToken:    make([]types.TokenStat, 0),
		TopAttackers:      make([]types.AttackerStat, 0),
		Attacks:           append(types.SandwichAttacks{}, attacks...),
		AnalyzedAt:        analyzedAt,
	}

	tokenIdx := make(map[string]int)
	tokens := make([]types.TokenStat, 0)
	attackerIdx := make(map[string]int)
	attackers := make([]types.AttackerStat, 0)
	weekIdx := make(map[string]int)
	price := decimal.NewFromFloat(solPriceUSD)

	for _, attack := range attacks {
		report.TotalLossLamports = report.TotalLossLamports.Add(attack.LossLamports)

		if report.WorstAttack == nil || attack.LossLamports.GreaterThan(report.WorstAttack.LossLamports) {
			report.WorstAttack = attack
		}

		i, ok := tokenIdx[attack.TokenMint]
		if !ok {
			i = len(tokens)
			tokenIdx[attack.TokenMint] = i
			tokens = append(tokens, types.TokenStat{Mint: attack.TokenMint, Symbol: attack.TokenSymbol})
		}
		tokens[i].Count++
		tokens[i].LossUSD += attack.LossUSD

		j, ok := attackerIdx[attack.AttackerWallet]
		if !ok {
			j = len(attackers)
			attackerIdx[attack.AttackerWallet] = j
			attackers = append(attackers, types.AttackerStat{Wallet: attack.AttackerWallet})
		}
		attackers[j].Count++
		attackers[j].TotalProfitUSD += attack.BotProfitLamports.Shift(-utils.SOL_DECIMALS).Mul(price).InexactFloat64()

		dex := report.AttacksByDex[attack.Dex]
		dex.Count++
		dex.LossUSD += attack.LossUSD
		report.AttacksByDex[attack.Dex] = dex

		week := weekStart(victimTimestamp(attack), loc)
		k, ok := weekIdx[week]
		if !ok {
			k = len(report.AttacksByWeek)
			weekIdx[week] = k
			report.AttacksByWeek = append(report.AttacksByWeek, types.WeekStat{Week: week})
		}
		report.AttacksByWeek[k].Count++
		report.AttacksByWeek[k].LossUSD += attack.LossUSD
	}

	report.TotalLossSOL = utils.LamportsToSol(report.TotalLossLamports)
	report.TotalLossUSD = report.TotalLossLamports.Shift(-utils.SOL_DECIMALS).Mul(price).InexactFloat64()

	// Most counted wins, first seen wins ties
	for i := range tokens {
		if report.MostTargetedToken == nil || tokens[i].Count > report.MostTargetedToken.Count {
			t := tokens[i]
			report.MostTargetedToken = &t
		}
	}
	for i := range attackers {
		if report.MostActiveAttacker == nil || attackers[i].Count > report.MostActiveAttacker.Count {
			at := attackers[i]
			report.MostActiveAttacker = &at
		}
	}

	sort.SliceStable(report.AttacksByWeek, func(i, j int) bool {
		return report.AttacksByWeek[i].Week < report.AttacksByWeek[j].Week
	})

	report.AttacksByToken = append(report.AttacksByToken, tokens...)
	sort.SliceStable(report.AttacksByToken, func(i, j int) bool {
		return report.AttacksByToken[i].LossUSD > report.AttacksByToken[j].LossUSD
	})

	ranked := append([]types.AttackerStat{}, attackers...)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Count > ranked[j].Count
	})
	top := a.TopAttackers
	if top <= 0 {
		top = config.REPORT_TOP_ATTACKERS
	}
	for i := 0; i < len(ranked) && i < top; i++ {
		stat := ranked[i]
		stat.KnownAlias = utils.KnownBotAlias(stat.Wallet)
		report.TopAttackers = append(report.TopAttackers, stat)
	}

	report.TimeRange = a.timeRange(attacks, analyzedAt)
	return report
}

func (a *Aggregator) timeRange(attacks types.SandwichAttacks, now time.Time) types.TimeRange {
	if len(attacks) == 0 {
		window := a.AnalysisWindow
		if window <= 0 {
			window = config.ANALYSIS_WINDOW
		}
		return types.TimeRange{From: now.Add(-window).Unix(), To: now.Unix()}
	}
	tr := types.TimeRange{From: victimTimestamp(attacks[0]), To: victimTimestamp(attacks[0])}
	for _, attack := range attacks[1:] {
		ts := victimTimestamp(attack)
		if ts < tr.From {
			tr.From = ts
		}
		if ts > tr.To {
			tr.To = ts
		}
	}
	return tr
}

func victimTimestamp(attack *types.SandwichAttack) int64 {
	if attack.Victim != nil {
		return attack.Victim.Timestamp
	}
	return 0
}

// weekStart returns the most recent Sunday at local midnight as YYYY-MM-DD.
func weekStart(ts int64, loc *time.Location) string {
	t := time.Unix(ts, 0).In(loc)
	start := time.Date(t.Year(), t.Month(), t.Day()-int(t.Weekday()), 0, 0, 0, 0, loc)
	return start.Format(time.DateOnly)
}
