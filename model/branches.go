package model

import (
	"github.com/edaniels/golog"
	"github.com/pkg/errors"
)

// A Branch is a contiguous range of joints moving one end effector.
type Branch struct {
	Name  string
	First int
	DoF   int
}

// Branches keeps track of which joints belong to which kinematic branch of a system.
type Branches struct {
	logger   golog.Logger
	jointDoF int
	branches map[string]Branch
	names    []string
}

// NewBranches returns an empty branch table for a system with jointDoF joints.
func NewBranches(jointDoF int, logger golog.Logger) *Branches {
	return &Branches{
		logger:   logger,
		jointDoF: jointDoF,
		branches: map[string]Branch{},
	}
}

// AddBranch registers a branch. Branches may not overlap.
func (b *Branches) AddBranch(branch Branch) error {
	if branch.Name == "" {
		return errors.New("branch name cannot be empty")
	}
	if _, ok := b.branches[branch.Name]; ok {
		return errors.Errorf("branch %q already exists", branch.Name)
	}
	if branch.DoF <= 0 || branch.First < 0 || branch.First+branch.DoF > b.jointDoF {
		return errors.Errorf("branch %q joints [%d, %d) out of range for %d joints",
			branch.Name, branch.First, branch.First+branch.DoF, b.jointDoF)
	}
	for _, other := range b.branches {
		if branch.First < other.First+other.DoF && other.First < branch.First+branch.DoF {
			return errors.Errorf("branch %q overlaps branch %q", branch.Name, other.Name)
		}
	}
	b.branches[branch.Name] = branch
	b.names = append(b.names, branch.Name)
	return nil
}

// Branch returns the branch with the given name.
func (b *Branches) Branch(name string) (Branch, bool) {
	branch, ok := b.branches[name]
	return branch, ok
}

// Names returns the branch names in registration order.
func (b *Branches) Names() []string {
	return append([]string(nil), b.names...)
}

// JointDoF returns the number of joints of the system.
func (b *Branches) JointDoF() int {
	return b.jointDoF
}

// BranchState returns a copy of the joints of a branch.
func (b *Branches) BranchState(q []float64, name string) ([]float64, error) {
	branch, ok := b.branches[name]
	if !ok {
		return nil, errors.Errorf("unknown branch %q", name)
	}
	if len(q) != b.jointDoF {
		return nil, errors.Errorf("joint state has %d elements, expected %d", len(q), b.jointDoF)
	}
	return append([]float64(nil), q[branch.First:branch.First+branch.DoF]...), nil
}

// SetBranchState writes the joints of a branch into q. A branch state whose dimension doesn't match
// the branch is a programming error and terminates the process.
func (b *Branches) SetBranchState(q, state []float64, name string) error {
	branch, ok := b.branches[name]
	if !ok {
		return errors.Errorf("unknown branch %q", name)
	}
	if len(state) != branch.DoF || len(q) != b.jointDoF {
		b.logger.Fatalw("inconsistent branch state",
			"branch", name, "expected", branch.DoF, "got", len(state), "joints", len(q))
		return errors.New("inconsistent branch state")
	}
	copy(q[branch.First:], state)
	return nil
}
