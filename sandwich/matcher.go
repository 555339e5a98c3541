package sandwich

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"sandwichcheck/types"

	MapSet "github.com/deckarep/golang-set/v2"
)

// SandwichFinder finds sandwiches around one wallet's trades within a single slot.
// A sandwich is a buy of token X before the victim's trade of X and a sell of X after it.
type SandwichFinder struct {
	VictimWallet string
	Trades       types.TradeEvents // every normalized trade of the slot
	Window       int               // max distance for wide sandwiches
	SolPriceUSD  float64
	Now          func() time.Time

	Attacks types.SandwichAttacks

	// Internal states, scoped to one Find call
	buckets  map[string]*tokenBucket
	consumed MapSet.Set[string] // signatures already used as front-run or back-run
}

// FindSandwiches runs a SandwichFinder over the trades of one slot.
func FindSandwiches(victimWallet string, trades types.TradeEvents, window int, solPriceUSD float64, now func() time.Time) types.SandwichAttacks {
	f := &SandwichFinder{
		VictimWallet: victimWallet,
		Trades:       trades,
		Window:       window,
		SolPriceUSD:  solPriceUSD,
		Now:          now,
	}
	f.Find()
	return f.Attacks
}

// Find tries, for each victim trade in block order, a classic match (same signer on both
// sides) and then a wide match (closest buy before, closest sell after, within Window).
// A matched front-run or back-run is never reused for a later victim trade.
func (f *SandwichFinder) Find() {
	f.Attacks = make(types.SandwichAttacks, 0)
	f.consumed = MapSet.NewThreadUnsafeSet[string]()
	f.buckets = buildTokenBuckets(f.Trades, f.VictimWallet)
	if f.Now == nil {
		f.Now = time.Now
	}

	victims := make(types.TradeEvents, 0)
	for _, t := range f.Trades {
		if t != nil && t.Signer == f.VictimWallet {
			victims = append(victims, t)
		}
	}
	sortByPosition(victims)

	for _, victim := range victims {
		bucket, ok := f.buckets[victim.TokenMint]
		if !ok {
			continue
		}
		frontCandidates := f.collectFrontRuns(victim, bucket.Buys)
		backCandidates := f.collectBackRuns(victim, bucket.Sells)
		if len(frontCandidates) == 0 || len(backCandidates) == 0 {
			continue
		}

		kind := types.Classic
		frontRun, backRun := matchClassic(frontCandidates, backCandidates)
		if frontRun == nil {
			kind = types.Wide
			frontRun, backRun = f.matchWide(victim, frontCandidates, backCandidates)
		}
		if frontRun == nil || backRun == nil {
			continue // not attacked
		}

		f.consumed.Add(frontRun.Signature)
		f.consumed.Add(backRun.Signature)
		f.RecordSandwich(kind, frontRun, victim, backRun)
	}
}

// collectFrontRuns returns the unused buys placed strictly before the victim.
func (f *SandwichFinder) collectFrontRuns(victim *types.TradeEvent, buys types.TradeEvents) types.TradeEvents {
	res := make(types.TradeEvents, 0)
	for _, b := range buys {
		if b.Position >= victim.Position {
			break // sorted by position
		}
		if f.consumed.Contains(b.Signature) {
			continue
		}
		res = append(res, b)
	}
	return res
}

// collectBackRuns returns the unused sells placed strictly after the victim.
func (f *SandwichFinder) collectBackRuns(victim *types.TradeEvent, sells types.TradeEvents) types.TradeEvents {
	res := make(types.TradeEvents, 0)
	for _, s := range sells {
		if s.Position <= victim.Position || f.consumed.Contains(s.Signature) {
			continue
		}
		res = append(res, s)
	}
	return res
}

// matchClassic returns the first front-run candidate that has a back-run by the same signer.
func matchClassic(fronts, backs types.TradeEvents) (*types.TradeEvent, *types.TradeEvent) {
	for _, front := range fronts {
		for _, back := range backs {
			if back.Signer == front.Signer {
				return front, back
			}
		}
	}
	return nil, nil
}

// matchWide pairs the closest buy before and the closest sell after the victim. Candidates
// are scanned in block order and only a strictly smaller distance replaces the current best,
// so the first one seen wins a tie.
func (f *SandwichFinder) matchWide(victim *types.TradeEvent, fronts, backs types.TradeEvents) (*types.TradeEvent, *types.TradeEvent) {
	closestFront := fronts[0]
	for _, c := range fronts[1:] {
		if victim.Position-c.Position < victim.Position-closestFront.Position {
			closestFront = c
		}
	}
	closestBack := backs[0]
	for _, c := range backs[1:] {
		if c.Position-victim.Position < closestBack.Position-victim.Position {
			closestBack = c
		}
	}

	frontDist := victim.Position - closestFront.Position
	backDist := closestBack.Position - victim.Position
	if frontDist <= 0 || frontDist > f.Window || backDist <= 0 || backDist > f.Window {
		return nil, nil
	}
	return closestFront, closestBack
}

// RecordSandwich builds the attack record. Slot, pool and token come from the victim trade,
// falling back to the front-run when the victim lacks them.
func (f *SandwichFinder) RecordSandwich(kind types.SandwichKind, frontRun, victim, backRun *types.TradeEvent) {
	loss := ComputeLoss(frontRun, victim, backRun, f.SolPriceUSD)

	attacker := frontRun.Signer
	if frontRun.Signer != backRun.Signer {
		attacker = CompositeAttacker(frontRun.Signer, backRun.Signer)
	}

	s := &types.SandwichAttack{
		ID:                makeSandwichID(frontRun.Signature, victim.Signature, backRun.Signature),
		Kind:              kind,
		VictimWallet:      f.VictimWallet,
		AttackerWallet:    attacker,
		Slot:              firstNonZero(victim.Slot, frontRun.Slot),
		Pool:              firstNonEmpty(victim.Pool, frontRun.Pool),
		TokenMint:         firstNonEmpty(victim.TokenMint, frontRun.TokenMint),
		TokenSymbol:       firstNonEmpty(victim.TokenSymbol, frontRun.TokenSymbol),
		Dex:               firstNonEmpty(victim.Dex, frontRun.Dex),
		Victim:            victim,
		FrontRun:          frontRun,
		BackRun:           backRun,
		LossLamports:      loss.LossLamports,
		LossUSD:           loss.LossUSD,
		BotProfitLamports: loss.BotProfitLamports,
		DetectedAt:        f.Now(),
	}
	f.Attacks = append(f.Attacks, s)
}

// CompositeAttacker marks a wide sandwich run from two different accounts.
func CompositeAttacker(frontSigner, backSigner string) string {
	return frontSigner + "+" + backSigner
}

func makeSandwichID(frontSig, victimSig, backSig string) string {
	h := sha256.Sum256([]byte(frontSig + ":" + victimSig + ":" + backSig))
	return hex.EncodeToString(h[:])
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func firstNonZero(values ...uint64) uint64 {
	for _, v := range values {
		if v != 0 {
			return v
		}
	}
	return 0
}
