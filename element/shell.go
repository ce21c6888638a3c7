package element

import (
	"fmt"
	"strconv"
	"strings"
)

// Shell is one occupied subshell, e.g. 3d6 is {N: 3, Subshell: "d", Electrons: 6}.
type Shell struct {
	N         int    `json:"n"`
	Subshell  string `json:"subshell"`
	Electrons int    `json:"electrons"`
}

func (s Shell) String() string {
	return strconv.Itoa(s.N) + s.Subshell + strconv.Itoa(s.Electrons)
}

// noble gas cores used as prefixes in configuration strings
var cores = map[string]string{
	"He": "1s2",
	"Ne": "[He].2s2.2p6",
	"Ar": "[Ne].3s2.3p6",
	"Kr": "[Ar].3d10.4s2.4p6",
	"Xe": "[Kr].4d10.5s2.5p6",
	"Rn": "[Xe].4f14.5d10.6s2.6p6",
}

// ParseConfiguration expands a configuration string such as "[Ar].3d6.4s2"
// into the full ordered list of subshells. Core prefixes are expanded in place,
// and the order of the remaining terms is kept as written.
func ParseConfiguration(conf string) ([]Shell, error) {
	conf = strings.TrimSpace(conf)
	if conf == "" {
		return nil, fmt.Errorf("empty electronic configuration")
	}

	var shells []Shell
	for _, term := range strings.Split(conf, ".") {
		term = strings.TrimSpace(term)
		if strings.HasPrefix(term, "[") && strings.HasSuffix(term, "]") {
			core, ok := cores[term[1:len(term)-1]]
			if !ok {
				return nil, fmt.Errorf("unknown core %s in %q", term, conf)
			}
			inner, err := ParseConfiguration(core)
			if err != nil {
				return nil, err
			}
			shells = append(shells, inner...)
			continue
		}

		s, err := parseTerm(term)
		if err != nil {
			return nil, fmt.Errorf("bad term in %q: %w", conf, err)
		}
		shells = append(shells, s)
	}
	return shells, nil
}

func parseTerm(term string) (Shell, error) {
	i := strings.IndexAny(term, "spdfg")
	if i < 1 || i == len(term)-1 {
		return Shell{}, fmt.Errorf("malformed subshell %q", term)
	}

	n, err := strconv.Atoi(term[:i])
	if err != nil || n < 1 {
		return Shell{}, fmt.Errorf("malformed shell number in %q", term)
	}
	e, err := strconv.Atoi(term[i+1:])
	if err != nil || e < 0 {
		return Shell{}, fmt.Errorf("malformed electron count in %q", term)
	}
	return Shell{N: n, Subshell: term[i : i+1], Electrons: e}, nil
}

// ValenceElectrons counts the electrons in the outermost shell (the shell of
// the last listed subshell) plus the d electrons of the shell below it.
func ValenceElectrons(shells []Shell) int {
	if len(shells) == 0 {
		return 0
	}

	outer := shells[len(shells)-1].N
	n := 0
	for _, s := range shells {
		if s.N == outer-1 && s.Subshell == "d" {
			n += s.Electrons
		}
		if s.N == outer {
			n += s.Electrons
		}
	}
	return n
}
