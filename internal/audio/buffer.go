package audio

// sampleBuffer - FIFO кольцевой буфер сэмплов, растёт при переполнении.
type sampleBuffer struct {
	data []int16
	head int
	size int
}

func newSampleBuffer(capacity int) *sampleBuffer {
	if capacity < 1 {
		capacity = 1
	}
	return &sampleBuffer{data: make([]int16, capacity)}
}

// Len возвращает количество накопленных сэмплов.
func (b *sampleBuffer) Len() int {
	return b.size
}

// Write добавляет сэмплы в конец буфера.
func (b *sampleBuffer) Write(samples []int16) {
	if b.size+len(samples) > len(b.data) {
		b.grow(b.size + len(samples))
	}
	tail := (b.head + b.size) % len(b.data)
	n := copy(b.data[tail:], samples)
	copy(b.data, samples[n:])
	b.size += len(samples)
}

// Drain извлекает ровно len(dst) сэмплов из начала буфера.
// Возвращает false, если данных недостаточно.
func (b *sampleBuffer) Drain(dst []int16) bool {
	if len(dst) > b.size {
		return false
	}
	n := copy(dst, b.data[b.head:min(b.head+len(dst), len(b.data))])
	copy(dst[n:], b.data)
	b.head = (b.head + len(dst)) % len(b.data)
	b.size -= len(dst)
	return true
}

func (b *sampleBuffer) grow(need int) {
	capacity := len(b.data) * 2
	for capacity < need {
		capacity *= 2
	}
	data := make([]int16, capacity)
	n := copy(data, b.data[b.head:min(b.head+b.size, len(b.data))])
	copy(data[n:b.size], b.data)
	b.data = data
	b.head = 0
}
