package domain

// RoleGoal is the weekly goal of one role.
type RoleGoal struct {
	Role    string   `yaml:"name"`
	Goal    int64    `yaml:"goal"`
	Members []string `yaml:"members,omitempty"`
}

// GoalTable maps roles to weekly goals. Roles are checked in declaration
// order, so the first listed role a member holds decides their goal.
type GoalTable struct {
	Roles       []RoleGoal `yaml:"roles"`
	DefaultGoal int64      `yaml:"default_goal"`
}

// DefaultRoleName is shown for members without a mapped role.
const DefaultRoleName = "Membro"

// ResolveGoal returns the goal for a member holding roles and the name of the
// role that decided it ("" when the default goal applies).
func ResolveGoal(roles []string, table GoalTable) (int64, string) {
	held := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		held[r] = struct{}{}
	}
	for _, rg := range table.Roles {
		if _, ok := held[rg.Role]; ok {
			return rg.Goal, rg.Role
		}
	}
	return table.DefaultGoal, ""
}

// RosterRoles returns the roles whose member list names userID.
func (t GoalTable) RosterRoles(userID string) []string {
	var roles []string
	for _, rg := range t.Roles {
		for _, m := range rg.Members {
			if m == userID {
				roles = append(roles, rg.Role)
				break
			}
		}
	}
	return roles
}

type Progress struct {
	Accumulated int64
	Remaining   int64
}

// EvaluateProgress compares a (possibly absent) deposit against goal.
func EvaluateProgress(d *Deposit, goal int64) Progress {
	var acc int64
	if d != nil {
		acc = d.Quantity
	}
	return Progress{
		Accumulated: acc,
		Remaining:   max(0, goal-acc),
	}
}
