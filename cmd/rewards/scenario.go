// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"io"
	"os"
	"regexp"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/vechain/rewards/bn"
	"github.com/vechain/rewards/thor"
)

var scenarioNameRe = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// Ref is an address in a scenario file. It is either hex, or a short name
// that maps to the address holding the name's bytes.
type Ref thor.Address

func (r Ref) Address() thor.Address { return thor.Address(r) }

func (r Ref) IsZero() bool { return thor.Address(r).IsZero() }

func (r Ref) MarshalText() ([]byte, error) {
	return thor.Address(r).MarshalText()
}

func (r *Ref) UnmarshalText(text []byte) error {
	s := string(text)
	if addr, err := thor.ParseAddress(s); err == nil {
		*r = Ref(addr)
		return nil
	}
	if s == "" || len(s) > thor.AddressLength {
		return errors.Errorf("invalid address or name %q", s)
	}
	*r = Ref(thor.BytesToAddress([]byte(s)))
	return nil
}

func addresses(refs []Ref) []thor.Address {
	out := make([]thor.Address, 0, len(refs))
	for _, r := range refs {
		out = append(out, r.Address())
	}
	return out
}

// Scenario is an ordered list of timed operations run against a fresh state.
type Scenario struct {
	Name  string `yaml:"name"`
	Start uint64 `yaml:"start"` // unix seconds of offset 0
	Steps []Step `yaml:"steps"`
}

// Step is one operation. At is relative to the scenario start and must not
// go backwards. Which of the remaining fields are read depends on Op.
type Step struct {
	At     uint64 `yaml:"at"`
	From   Ref    `yaml:"from"`
	Op     string `yaml:"op"`
	Target Ref    `yaml:"target"`

	Token        Ref       `yaml:"token"`
	To           Ref       `yaml:"to"`
	Amount       bn.Amount `yaml:"amount"`
	Days         uint64    `yaml:"days"`
	Period       uint64    `yaml:"period"`
	Price        bn.Amount `yaml:"price"`
	Soulbound    bool      `yaml:"soulbound"`
	Rewarder     Ref       `yaml:"rewarder"`
	Governance   Ref       `yaml:"governance"`
	StakingToken Ref       `yaml:"stakingToken"`
	RewardTokens []Ref     `yaml:"rewardTokens"`
	StartTime    uint64    `yaml:"startTime"`
	Duration     uint64    `yaml:"duration"`
	Booster      Ref       `yaml:"booster"`

	Pair           Ref       `yaml:"pair"`
	LPToken        Ref       `yaml:"lpToken"`
	ReferenceToken Ref       `yaml:"referenceToken"`
	OtherToken     Ref       `yaml:"otherToken"`
	Oracle         Ref       `yaml:"oracle"`
	EscrowToken    Ref       `yaml:"escrowToken"`
	EscrowRate     bn.Amount `yaml:"escrowRate"`
	ReferencePrice bn.Amount `yaml:"referencePrice"`

	// Expect is "ok" (the default) or "revert". Reason, when set, must match the
	// revert message.
	Expect string `yaml:"expect"`
	Reason string `yaml:"reason"`
}

func (s *Step) expectRevert() bool { return s.Expect == "revert" }

// LoadScenarios reads every YAML document of r as a scenario.
func LoadScenarios(r io.Reader) ([]*Scenario, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var out []*Scenario
	for {
		var sc Scenario
		if err := dec.Decode(&sc); err != nil {
			if err == io.EOF {
				break
			}
			return nil, errors.Wrapf(err, "decode scenario #%d", len(out))
		}
		if err := sc.validate(); err != nil {
			return nil, errors.WithMessagef(err, "scenario %q", sc.Name)
		}
		out = append(out, &sc)
	}
	return out, nil
}

// LoadScenarioFile reads the scenarios of one file.
func LoadScenarioFile(path string) ([]*Scenario, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	scenarios, err := LoadScenarios(f)
	if err != nil {
		return nil, errors.WithMessage(err, path)
	}
	return scenarios, nil
}

func (sc *Scenario) validate() error {
	if !scenarioNameRe.MatchString(sc.Name) {
		return errors.New("name must be non-empty and contain only letters, digits, '-' or '_'")
	}
	var last uint64
	for i := range sc.Steps {
		step := &sc.Steps[i]
		if _, ok := operations[step.Op]; !ok {
			return errors.Errorf("step %d: unknown op %q", i, step.Op)
		}
		if step.At < last {
			return errors.Errorf("step %d: at %d is before %d", i, step.At, last)
		}
		last = step.At
		switch step.Expect {
		case "", "ok", "revert":
		default:
			return errors.Errorf("step %d: expect must be ok or revert", i)
		}
	}
	return nil
}
