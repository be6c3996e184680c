package entities

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
)

type NovelAIRequest struct {
	Action     actions    `json:"action,omitempty"`
	Input      string     `json:"input,omitempty"`
	Model      models     `json:"model,omitempty"`
	Parameters Parameters `json:"parameters"`
}

type Parameters struct {
	NegativePrompt string `json:"negative_prompt,omitempty"`

	Width   int64   `json:"width,omitempty"`
	Height  int64   `json:"height,omitempty"`
	Steps   int64   `json:"steps,omitempty"`
	Seed    int64   `json:"seed,omitempty"`
	Sampler sampler `json:"sampler,omitempty"`
	Smea    bool    `json:"sm"`     // Smea versions of samplers are modified to perform better at high resolutions.
	SmeaDyn bool    `json:"sm_dyn"` // Dyn variants of Smea samplers often lead to more varied output, but may fail at very high resolutions.
	Scale   float64 `json:"scale"`  // Prompt guidance, also known as CFG Scale
	// CfgRescale counteracts the saturation caused by high guidance.
	CfgRescale float64 `json:"cfg_rescale"`
	// Whether to enable [Decrisper].
	//
	// [Decrisper]: https://docs.novelai.net/image/stepsguidance.html#decrisper
	Decrisper   bool    `json:"dynamic_thresholding"`
	UncondScale float64 `json:"uncond_scale"`

	// QualityToggle appends AdditionalPositive server side.
	QualityToggle bool `json:"qualityToggle"`

	// UcPreset aka Undesired Content preset.
	// The presets are as follows:
	// 0: HeavyNegative
	// 1: LightNegative
	// 2: HumanFocusNegative
	// 3: None
	UcPreset int64 `json:"ucPreset"`

	// ImageCount is the number of images to generate.
	ImageCount uint8 `json:"n_samples,omitempty"`

	NoiseSchedule schedule `json:"noise_schedule,omitempty"`

	// Image is the base64 encoded source for img2img.
	Image    string  `json:"image,omitempty"`
	Noise    float64 `json:"noise,omitempty"`
	Strength float64 `json:"strength,omitempty"`

	ParamsVersion int64 `json:"params_version,omitempty"`
	Legacy        bool  `json:"legacy"`
}

type NovelAIResponse struct {
	// Images holds the raw PNG files in the order the zip listed them.
	Images [][]byte
	// Seed is the seed recorded in the image metadata, or the requested one.
	Seed int64
}

type sampler = string
type schedule = string

const (
	UCHeavy = iota
	UCLight
	UCHumanFocus
	UCNone
)

const (
	DefaultPrompt         = "best quality, amazing quality, very aesthetic, absurdres"
	DefaultNegativePrompt = "lowres, {bad}, error, fewer, extra, missing, worst quality, jpeg artifacts, bad quality, watermark, unfinished, displeasing, chromatic aberration, signature, extra digits, artistic error, username, scan, [abstract]"
)

func UnmarshalNovelAIRequest(data []byte) (NovelAIRequest, error) {
	var r NovelAIRequest
	err := json.Unmarshal(data, &r)
	return r, err
}

// Reader validates the request and encodes it for the generate-image endpoint.
func (r *NovelAIRequest) Reader() (io.Reader, error) {
	if !validDimension(r.Parameters.Width) {
		return nil, fmt.Errorf("width out of range (%d-%d): %d", MinDimension, MaxDimension, r.Parameters.Width)
	}
	if !validDimension(r.Parameters.Height) {
		return nil, fmt.Errorf("height out of range (%d-%d): %d", MinDimension, MaxDimension, r.Parameters.Height)
	}
	if r.Parameters.Steps < 1 || r.Parameters.Steps > 50 {
		return nil, fmt.Errorf("steps out of range (1-50): %d", r.Parameters.Steps)
	}
	if r.Parameters.Scale < 0 || r.Parameters.Scale > 10 {
		return nil, fmt.Errorf("scale out of range (0-10): %f", r.Parameters.Scale)
	}
	if r.Parameters.Seed < 0 || r.Parameters.Seed > MaxSeed {
		return nil, fmt.Errorf("seed out of range (0-%d): %d", MaxSeed, r.Parameters.Seed)
	}

	var buf bytes.Buffer
	err := json.NewEncoder(&buf).Encode(r)
	return &buf, err
}

const MaxSeed = 4294967295 - 7

const (
	MinDimension = 64
	MaxDimension = 49152
)

func validDimension(n int64) bool {
	return n >= MinDimension && n <= MaxDimension
}

func DefaultNovelAIRequest() *NovelAIRequest {
	return &NovelAIRequest{
		Action: ActionGenerate,
		Model:  ModelV3,
		Parameters: Parameters{
			Width:         ResolutionNormalPortrait[0],
			Height:        ResolutionNormalPortrait[1],
			Steps:         28,
			Scale:         5.0,
			UcPreset:      UCNone,
			ImageCount:    1,
			Sampler:       SamplerDefault,
			NoiseSchedule: ScheduleDefault,
			UncondScale:   1.0,
			ParamsVersion: 1,
		},
	}
}

// Clone returns a deep enough copy for re-queueing the same request.
func (r *NovelAIRequest) Clone() *NovelAIRequest {
	if r == nil {
		return nil
	}
	c := *r
	return &c
}

func (r *NovelAIRequest) IsImg2Img() bool {
	return r.Action == ActionImg2Img || r.Parameters.Image != ""
}

type models = string

const (
	ModelV3    models = "nai-diffusion-3"
	ModelV3Inp models = "nai-diffusion-3-inpainting"
)

type actions = string

const (
	ActionGenerate actions = "generate"
	ActionInpaint  actions = "infill"
	ActionImg2Img  actions = "img2img"
)

const (
	SamplerDefault = SamplerEuler // Euler

	SamplerEuler          sampler = "k_euler"              // Euler
	SamplerEulerAncestral sampler = "k_euler_ancestral"    // Euler Ancestral
	SamplerDPM2SAncestral sampler = "k_dpmpp_2s_ancestral" // DPM++ 2S Ancestral
	SamplerDPM2M          sampler = "k_dpmpp_2m"           // DPM++ 2M
	SamplerDPMSDE         sampler = "k_dpmpp_sde"          // DPM++ SDE
	SamplerDDIM           sampler = "ddim_v3"              // DDIM
)

var SamplerTitles = map[sampler]string{
	SamplerEuler:          "Euler",
	SamplerEulerAncestral: "Euler Ancestral",
	SamplerDPM2SAncestral: "DPM++ 2S Ancestral",
	SamplerDPM2M:          "DPM++ 2M",
	SamplerDPMSDE:         "DPM++ SDE",
	SamplerDDIM:           "DDIM",
}

const (
	ScheduleDefault = ScheduleNative

	ScheduleRecommended     schedule = "Always pick recommended"
	ScheduleNative          schedule = "native"
	ScheduleKarras          schedule = "karras"
	ScheduleExponential     schedule = "exponential"
	SchedulePolyexponential schedule = "polyexponential"
)

const (
	SamplerVersionRegular = "Regular"
	SamplerVersionSMEA    = "SMEA"
	SamplerVersionDYN     = "SMEA+DYN"
)

type resolutionPreset [2]int64

var (
	ResolutionNormalPortrait    resolutionPreset = [2]int64{832, 1216}
	ResolutionNormalLandscape   resolutionPreset = [2]int64{1216, 832}
	ResolutionNormalSquare      resolutionPreset = [2]int64{1024, 1024}
	ResolutionLargePortrait     resolutionPreset = [2]int64{1024, 1536}
	ResolutionLargeLandscape    resolutionPreset = [2]int64{1536, 1024}
	ResolutionWallpaperPortrait resolutionPreset = [2]int64{1088, 1920}
)

func (p resolutionPreset) String() string {
	return fmt.Sprintf("%d,%d", p[0], p[1])
}

// ResolutionTitles maps the stored "W,H" form to a display name.
var ResolutionTitles = map[string]string{
	ResolutionNormalPortrait.String():    "Portrait (832x1216)",
	ResolutionNormalLandscape.String():   "Landscape (1216x832)",
	ResolutionNormalSquare.String():      "Square (1024x1024)",
	ResolutionLargePortrait.String():     "Large Portrait (1024x1536)",
	ResolutionLargeLandscape.String():    "Large Landscape (1536x1024)",
	ResolutionWallpaperPortrait.String(): "Wallpaper Portrait (1088x1920)",
}

// ParseResolution reads the "W,H" form, falling back to a 1024x1024 square
// when it does not parse or either side is out of range.
func ParseResolution(s string) (width, height int64) {
	w, h, found := strings.Cut(s, ",")
	if !found {
		return ResolutionNormalSquare[0], ResolutionNormalSquare[1]
	}
	width, errW := strconv.ParseInt(strings.TrimSpace(w), 10, 64)
	height, errH := strconv.ParseInt(strings.TrimSpace(h), 10, 64)
	if errW != nil || errH != nil || !validDimension(width) || !validDimension(height) {
		return ResolutionNormalSquare[0], ResolutionNormalSquare[1]
	}
	return width, height
}
