package scene

import (
	"log"

	"github.com/binzume/hdconv/geom"
	"github.com/binzume/hdconv/hd"
	"github.com/binzume/hdconv/skeleton"
)

// DefaultFrameRate is used for motions that do not store a rate.
const DefaultFrameRate = 30

// motionAnimation samples mot on sk. Only bones with a track get a
// channel; the others keep their rest transform.
func motionAnimation(name string, sk *skeleton.Skeleton, mot *hd.Motion, root skeleton.RootKey, rate float32) (*Animation, error) {
	names := make([]string, len(mot.Tracks))
	for i, t := range mot.Tracks {
		names[i] = t.Name
	}
	for _, n := range sk.Unmatched(names) {
		log.Printf("%s: bone %q not found in armature", name, n)
	}

	if mot.FrameRate > 0 {
		rate = float32(mot.FrameRate)
	}
	a := &Animation{Name: name, FrameRate: rate, NumFrames: mot.NumFrames}
	seen := map[int]bool{}
	for _, t := range mot.Tracks {
		if b := sk.Find(t.Name); b != nil && !seen[b.Index] {
			seen[b.Index] = true
			a.Channels = append(a.Channels, &Channel{Bone: b.Index, Frames: make([]*geom.Matrix4, 0, mot.NumFrames)})
		}
	}
	if len(a.Channels) == 0 {
		return a, nil
	}

	keys := make(map[string]hd.Key, len(mot.Tracks))
	for f := 1; f <= mot.NumFrames; f++ {
		frame, err := mot.Frame(f)
		if err != nil {
			return nil, err
		}
		for i, k := range frame {
			keys[mot.Tracks[i].Name] = k
		}
		local := sk.LocalPose(sk.Pose(keys, root))
		for _, c := range a.Channels {
			c.Frames = append(c.Frames, local[c.Bone])
		}
	}
	return a, nil
}

// poseAnimation turns a pose into a one frame animation.
func poseAnimation(name string, sk *skeleton.Skeleton, p *hd.Pose) (*Animation, error) {
	mot := &hd.Motion{NumFrames: 1}
	for _, t := range p.Transforms {
		mot.Tracks = append(mot.Tracks, &hd.Track{Name: t.Name, Keys: []hd.Key{t.Key}})
	}
	return motionAnimation(name, sk, mot, skeleton.PoseRoot, DefaultFrameRate)
}
