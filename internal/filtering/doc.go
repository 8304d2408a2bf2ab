// Package filtering decides which catalog projects the tracker reconciles.
//
// A project passes when both its name and its entity's tags pass:
//
//   - Names are matched with glob patterns; '*' also matches across slashes,
//     so "platform/*" matches "platform/api/gateway".
//   - Tags are matched exactly against the entity's metadata.tags.
//
// Within each dimension exclude rules take precedence over include rules, an
// include list that matches nothing excludes the project, and an empty
// configuration includes everything.
//
//	filter, err := NewProjectFilter(&config.ProjectFilterConfig{
//		Names: &config.PatternFilterConfig{Include: []string{"platform/*"}},
//		Tags:  &config.PatternFilterConfig{Exclude: []string{"deprecated"}},
//	})
//	ok, reason := filter.ShouldTrack("platform/api", []string{"go"})
package filtering
