package plan

import "github.com/shinji-kodama/envstrap/internal/model"

// SelectGroups resolves the optional dependency groups to sync.
//
// Flagged groups are always selected. Full mode adds every known group,
// interactive mode adds the known groups answered with "yes", and minimal
// mode adds nothing. Unknown flagged groups are kept so the dependency
// manager can report them.
func SelectGroups(in Input, answers Answers) model.GroupSelection {
	sel := model.NewGroupSelection(in.Intent.Groups...)

	switch in.Mode {
	case model.ModeFull:
		for _, g := range in.KnownGroups {
			sel = sel.With(g)
		}
	case model.ModeInteractive:
		for _, g := range in.KnownGroups {
			if answers.Yes(GroupQuestion(g)) {
				sel = sel.With(g)
			}
		}
	}

	return sel
}
