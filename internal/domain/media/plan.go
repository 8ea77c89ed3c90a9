package media

// PlannerConfig toggles the optional entries of the video ladder.
type PlannerConfig struct {
	EnableHLS        bool
	EnableThumbnails bool
}

// Planner produces the ordered derived-format requests for a resource kind.
// It only describes intent; the remote service may satisfy each request
// synchronously or later.
type Planner struct {
	cfg PlannerConfig
}

func NewPlanner(cfg PlannerConfig) *Planner {
	return &Planner{cfg: cfg}
}

// PlanFor returns the transformation ladder for kind. Audio and documents
// pass through untouched.
func (p *Planner) PlanFor(kind Kind) []Transformation {
	switch kind {
	case KindVideo:
		plan := []Transformation{
			{
				Format:     "mp4",
				Quality:    "auto",
				VideoCodec: "auto",
				MaxHeight:  720,
			},
		}
		if p.cfg.EnableHLS {
			plan = append(plan, Transformation{
				Format:           "m3u8",
				StreamingProfile: "auto",
			})
		}
		if p.cfg.EnableThumbnails {
			plan = append(plan, Transformation{
				Format:      "jpg",
				Width:       640,
				Height:      360,
				Crop:        "fill",
				StartOffset: 5,
			})
		}
		return plan
	case KindImage:
		return []Transformation{
			{Format: "auto", Quality: "auto"},
		}
	default:
		return nil
	}
}
