package preprocess

import (
	"image"
	"image/color"
)

// otsuLevel picks a binarization threshold by maximizing the between-class
// variance of the luminance histogram. When the maximum sits on a plateau,
// as it does for strongly bimodal scans, the midpoint of the plateau is
// returned so the cut lands between the ink and paper modes.
func otsuLevel(img image.Image) uint8 {
	var hist [256]int
	b := img.Bounds()
	total := b.Dx() * b.Dy()
	if total == 0 {
		return 0
	}
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			g := color.GrayModel.Convert(img.At(x, y)).(color.Gray)
			hist[g.Y]++
		}
	}

	var sum float64
	for i, n := range hist {
		sum += float64(i) * float64(n)
	}

	var sumB, wB, best float64
	var lo, hi int
	for i := 0; i < 256; i++ {
		wB += float64(hist[i])
		if wB == 0 {
			continue
		}
		wF := float64(total) - wB
		if wF == 0 {
			break
		}
		sumB += float64(i) * float64(hist[i])
		mB := sumB / wB
		mF := (sum - sumB) / wF
		between := wB * wF * (mB - mF) * (mB - mF)
		if between > best {
			best = between
			lo, hi = i, i
		} else if between == best {
			hi = i
		}
	}
	return uint8((lo + hi) / 2)
}
