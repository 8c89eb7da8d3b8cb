package filter

import (
	"fmt"
	"slices"
	"strings"
	"sync"
)

var (
	registryMu sync.RWMutex
	registry   = map[string]*Wavelet{}
	builtins   sync.Once
	builtinErr error
)

// Lookup returns the registered wavelet with the given name. Names are
// case-insensitive. The returned wavelet must not be modified.
func Lookup(name string) (*Wavelet, error) {
	if err := loadBuiltins(); err != nil {
		return nil, err
	}
	registryMu.RLock()
	w, ok := registry[strings.ToLower(strings.TrimSpace(name))]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownWavelet, name)
	}
	return w, nil
}

// Register adds a custom wavelet after verifying perfect reconstruction.
// The registry stores a deep copy, so later changes to w do not affect
// lookups. Names are case-insensitive and cannot be registered twice;
// built-in wavelets are never replaced.
func Register(w *Wavelet) error {
	if err := loadBuiltins(); err != nil {
		return err
	}
	if w == nil {
		return fmt.Errorf("%w: nil wavelet", ErrInvalidFilter)
	}
	c := w.clone()
	c.Name = strings.ToLower(strings.TrimSpace(c.Name))
	if c.Name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidFilter)
	}
	if err := verify(c); err != nil {
		return err
	}

	registryMu.Lock()
	defer registryMu.Unlock()
	if _, ok := registry[c.Name]; ok {
		return fmt.Errorf("%w: %q", ErrWaveletExists, c.Name)
	}
	registry[c.Name] = c
	return nil
}

// Names returns all registered wavelet names in family order.
func Names() ([]string, error) {
	if err := loadBuiltins(); err != nil {
		return nil, err
	}
	registryMu.RLock()
	defer registryMu.RUnlock()
	return sortedKeys(), nil
}

// Families returns the distinct families of the registered wavelets.
func Families() ([]Family, error) {
	if err := loadBuiltins(); err != nil {
		return nil, err
	}
	registryMu.RLock()
	defer registryMu.RUnlock()

	seen := map[Family]bool{}
	var out []Family
	for _, name := range sortedKeys() {
		f := registry[name].Family
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	return out, nil
}

func sortedKeys() []string {
	keys := make([]string, 0, len(registry))
	for k := range registry {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareNames)
	return keys
}

// compareNames orders names by alphabetic prefix, then numerically by the
// digits that follow ("db2" < "db10", "bior2.2" < "bior2.4").
func compareNames(a, b string) int {
	pa, na := splitName(a)
	pb, nb := splitName(b)
	if c := strings.Compare(pa, pb); c != 0 {
		return c
	}
	for i := 0; i < len(na) && i < len(nb); i++ {
		if na[i] != nb[i] {
			return na[i] - nb[i]
		}
	}
	return len(na) - len(nb)
}

func splitName(s string) (string, []int) {
	i := strings.IndexFunc(s, func(r rune) bool { return r >= '0' && r <= '9' })
	if i < 0 {
		return s, nil
	}
	var nums []int
	for _, part := range strings.Split(s[i:], ".") {
		v := 0
		for _, r := range part {
			if r >= '0' && r <= '9' {
				v = v*10 + int(r-'0')
			}
		}
		nums = append(nums, v)
	}
	return s[:i], nums
}

func verify(w *Wavelet) error {
	if w == nil || w.Len() == 0 {
		return fmt.Errorf("%w: empty filter bank", ErrInvalidFilter)
	}
	if w.Len()%2 != 0 || len(w.DecHi) != w.Len() || len(w.RecLo) != w.Len() || len(w.RecHi) != w.Len() {
		return fmt.Errorf("%w: %s: filter lengths differ", ErrInvalidFilter, w.Name)
	}
	if e := w.ReconstructionError(); e > reconstructionTolerance {
		return fmt.Errorf("%w: %s: perfect reconstruction error %.3g exceeds %.0e",
			ErrInvalidFilter, w.Name, e, reconstructionTolerance)
	}
	if w.Orthogonal {
		if e := w.OrthonormalityError(); e > reconstructionTolerance {
			return fmt.Errorf("%w: %s: orthonormality error %.3g exceeds %.0e",
				ErrInvalidFilter, w.Name, e, reconstructionTolerance)
		}
	}
	if e := w.MomentError(); e > momentTolerance {
		return fmt.Errorf("%w: %s: %d vanishing moments claimed, moment error %.3g",
			ErrInvalidFilter, w.Name, w.VanishingMoments, e)
	}
	return nil
}

func loadBuiltins() error {
	builtins.Do(func() {
		builtinErr = registerBuiltins()
	})
	return builtinErr
}

func registerBuiltins() error {
	add := func(w *Wavelet, err error) error {
		if err != nil {
			return err
		}
		if err := verify(w); err != nil {
			return err
		}
		registryMu.Lock()
		registry[w.Name] = w
		registryMu.Unlock()
		return nil
	}

	haar, err := Daubechies(1)
	if err != nil {
		return err
	}
	w, err := NewOrthogonal("haar", FamilyHaar, haar)
	if err == nil {
		w.VanishingMoments = 1
	}
	if err := add(w, err); err != nil {
		return err
	}

	for n := 1; n <= maxDaubechiesOrder; n++ {
		h, err := Daubechies(n)
		if err != nil {
			return err
		}
		w, err := NewOrthogonal(fmt.Sprintf("db%d", n), FamilyDaubechies, h)
		if err == nil {
			w.VanishingMoments = n
		}
		if err := add(w, err); err != nil {
			return err
		}
	}

	for n := 2; n <= maxSymletOrder; n++ {
		h, err := Symlet(n)
		if err != nil {
			return err
		}
		w, err := NewOrthogonal(fmt.Sprintf("sym%d", n), FamilySymlet, h)
		if err == nil {
			w.VanishingMoments = n
		}
		if err := add(w, err); err != nil {
			return err
		}
	}

	w, err = NewOrthogonal("coif1", FamilyCoiflet, Coiflet1())
	if err == nil {
		w.VanishingMoments = coif1VanishingMoments
	}
	if err := add(w, err); err != nil {
		return err
	}

	for _, o := range splineOrders {
		nr, nd := o[0], o[1]
		decLo, recLo, err := SplineBiorthogonal(nr, nd)
		if err != nil {
			return err
		}
		bior, err := NewBiorthogonal(fmt.Sprintf("bior%d.%d", nr, nd), FamilyBiorthogonal, decLo, recLo)
		if err == nil {
			bior.VanishingMoments = nr
		}
		if err := add(bior, err); err != nil {
			return err
		}
		rbio, err := bior.Reverse(fmt.Sprintf("rbio%d.%d", nr, nd), FamilyReverseBior)
		if err == nil {
			rbio.VanishingMoments = nd
		}
		if err := add(rbio, err); err != nil {
			return err
		}
	}
	return nil
}
