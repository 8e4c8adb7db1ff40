package audio

import "math"

// VolumeScale - делитель RMS для шкалы громкости 0-100.
// RMS 10000 (громкая речь) соответствует 100.
const VolumeScale = 100.0

// downmix усредняет каналы в mono. Для mono возвращает исходный срез.
func downmix(samples []int16, channels int) []int16 {
	if channels <= 1 {
		return samples
	}
	mono := make([]int16, len(samples)/channels)
	for i := range mono {
		var sum int32
		for ch := 0; ch < channels; ch++ {
			sum += int32(samples[i*channels+ch])
		}
		mono[i] = int16(sum / int32(channels))
	}
	return mono
}

// volumeLevel вычисляет грубый уровень 0-100 по RMS кадра.
func volumeLevel(mono []int16) int {
	if len(mono) == 0 {
		return 0
	}
	var sumSq float64
	for _, s := range mono {
		v := float64(s)
		sumSq += v * v
	}
	rms := math.Sqrt(sumSq / float64(len(mono)))
	return int(min(rms/VolumeScale, 100))
}

// resample приводит кадр к outLen сэмплам выбором ближайшего индекса.
// Без фильтрации.
func resample(mono []int16, outLen int) []int16 {
	if len(mono) == outLen || len(mono) == 0 {
		return mono
	}
	ratio := float32(len(mono)) / float32(outLen)
	out := make([]int16, outLen)
	for i := range out {
		src := min(int(float32(i)*ratio), len(mono)-1)
		out[i] = mono[src]
	}
	return out
}
