package session

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sync"

	"github.com/disintegration/imaging"
	ort "github.com/yalue/onnxruntime_go"
	"go.uber.org/zap"
	_ "golang.org/x/image/webp"
)

// onnxInputSize is used when the model leaves its spatial dimensions dynamic.
const onnxInputSize = 320

// onnxUnsupported lists models that are not a single image-in, mask-out graph.
var onnxUnsupported = map[string]string{
	"sam":             "needs a separate encoder and decoder with prompts",
	"u2net_cloth_seg": "produces one mask per garment class",
}

var (
	imageNetMean = [3]float32{0.485, 0.456, 0.406}
	imageNetStd  = [3]float32{0.229, 0.224, 0.225}
)

var (
	envOnce sync.Once
	envErr  error
)

func initEnvironment(libraryPath string) error {
	envOnce.Do(func() {
		ort.SetSharedLibraryPath(libraryPath)
		envErr = ort.InitializeEnvironment()
	})
	return envErr
}

// OnnxSession runs a U2-Net style model in-process through ONNX Runtime.
type OnnxSession struct {
	name     string
	size     int
	outShape ort.Shape
	session  *ort.DynamicAdvancedSession
	logger   *zap.Logger
}

// NewOnnxFactory returns a Factory loading {modelDir}/{name}.onnx.
func NewOnnxFactory(modelDir, libraryPath string, logger *zap.Logger) Factory {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(name string) (Session, error) {
		if err := ValidateModel(name); err != nil {
			return nil, err
		}
		if reason, ok := onnxUnsupported[name]; ok {
			return nil, fmt.Errorf("model %s is not supported by the onnx backend: %s", name, reason)
		}

		modelPath := filepath.Join(modelDir, name+".onnx")
		if _, err := os.Stat(modelPath); err != nil {
			return nil, fmt.Errorf("model weights not found at %s: %w", modelPath, err)
		}

		if err := initEnvironment(libraryPath); err != nil {
			return nil, fmt.Errorf("initialize onnxruntime: %w", err)
		}

		inputs, outputs, err := ort.GetInputOutputInfo(modelPath)
		if err != nil {
			return nil, fmt.Errorf("inspect model: %w", err)
		}
		if len(inputs) == 0 || len(outputs) == 0 {
			return nil, fmt.Errorf("model %s has no inputs or outputs", modelPath)
		}
		size, outShape, err := resolveShapes(inputs[0].Dimensions, outputs[0].Dimensions)
		if err != nil {
			return nil, fmt.Errorf("model %s: %w", modelPath, err)
		}

		sess, err := ort.NewDynamicAdvancedSession(modelPath,
			[]string{inputs[0].Name}, []string{outputs[0].Name}, nil)
		if err != nil {
			return nil, fmt.Errorf("create session: %w", err)
		}

		logger.Info("ONNX model ready",
			zap.String("model", name),
			zap.Int("input_size", size),
			zap.Int64s("output_shape", outShape))

		return &OnnxSession{
			name:     name,
			size:     size,
			outShape: outShape,
			session:  sess,
			logger:   logger,
		}, nil
	}
}

func (s *OnnxSession) Name() string {
	return s.name
}

func (s *OnnxSession) Remove(ctx context.Context, data []byte, opts RemoveOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("cannot identify image: %w", err)
	}

	if opts.AlphaMatting {
		s.logger.Debug("Alpha matting is not available on the onnx backend, using the raw mask")
	}

	size := int64(s.size)
	input, err := ort.NewTensor(ort.NewShape(1, 3, size, size), toInputTensor(img, s.size))
	if err != nil {
		return nil, fmt.Errorf("create input tensor: %w", err)
	}
	defer func() {
		_ = input.Destroy()
	}()

	output, err := ort.NewEmptyTensor[float32](append(ort.Shape(nil), s.outShape...))
	if err != nil {
		return nil, fmt.Errorf("create output tensor: %w", err)
	}
	defer func() {
		_ = output.Destroy()
	}()

	if err := s.session.Run([]ort.Value{input}, []ort.Value{output}); err != nil {
		return nil, fmt.Errorf("run inference: %w", err)
	}

	mask := predictionToMask(output.GetData(), s.size)
	cutout := applyMask(img, mask)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, cutout, imaging.PNG); err != nil {
		return nil, fmt.Errorf("encode cutout: %w", err)
	}
	return buf.Bytes(), nil
}

// resolveShapes reads the square input size from an NCHW input with 3 channels
// and checks the first output is a single mask of that size, either NCHW with
// one channel or NHW. Dynamic dimensions (-1) take the batch of 1 and onnxInputSize.
func resolveShapes(in, out ort.Shape) (int, ort.Shape, error) {
	if len(in) != 4 {
		return 0, nil, fmt.Errorf("input has %d dimensions, want 4", len(in))
	}
	if in[1] != 3 && in[1] > 0 {
		return 0, nil, fmt.Errorf("input has %d channels, want 3", in[1])
	}
	h, w := in[2], in[3]
	if h <= 0 && w <= 0 {
		h, w = onnxInputSize, onnxInputSize
	} else if h <= 0 {
		h = w
	} else if w <= 0 {
		w = h
	}
	if h != w {
		return 0, nil, fmt.Errorf("input is %dx%d, want a square input", h, w)
	}
	size := h

	outShape := append(ort.Shape(nil), out...)
	switch len(outShape) {
	case 4:
		if outShape[1] > 1 {
			return 0, nil, fmt.Errorf("output has %d channels, want 1", outShape[1])
		}
		outShape[1] = 1
	case 3:
	default:
		return 0, nil, fmt.Errorf("output has %d dimensions, want 3 or 4", len(outShape))
	}
	outShape[0] = 1
	for i := len(outShape) - 2; i < len(outShape); i++ {
		if outShape[i] <= 0 {
			outShape[i] = size
		}
		if outShape[i] != size {
			return 0, nil, fmt.Errorf("output mask is %v, want %dx%d", out, size, size)
		}
	}
	return int(size), outShape, nil
}

// toInputTensor resizes to size x size, scales by the brightest channel value
// and applies ImageNet normalisation, laid out as CHW.
func toInputTensor(img image.Image, size int) []float32 {
	resized := imaging.Resize(img, size, size, imaging.Lanczos)
	plane := size * size

	var maxVal uint8
	for i := 0; i < len(resized.Pix); i += 4 {
		for c := 0; c < 3; c++ {
			if resized.Pix[i+c] > maxVal {
				maxVal = resized.Pix[i+c]
			}
		}
	}
	scale := float32(maxVal)
	if scale < 1e-6 {
		scale = 1e-6
	}

	tensor := make([]float32, 3*plane)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			off := y*resized.Stride + x*4
			idx := y*size + x
			for c := 0; c < 3; c++ {
				v := float32(resized.Pix[off+c]) / scale
				tensor[c*plane+idx] = (v - imageNetMean[c]) / imageNetStd[c]
			}
		}
	}
	return tensor
}

// predictionToMask min-max normalises the first size*size values into a gray mask.
func predictionToMask(pred []float32, size int) *image.Gray {
	mask := image.NewGray(image.Rect(0, 0, size, size))
	n := size * size
	if len(pred) < n {
		return mask
	}

	lo, hi := pred[0], pred[0]
	for _, v := range pred[:n] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	span := hi - lo
	if span <= 0 {
		return mask
	}

	for i, v := range pred[:n] {
		mask.Pix[i] = uint8((v-lo)/span*255 + 0.5)
	}
	return mask
}

// applyMask scales the mask to the image and multiplies it into the alpha channel.
func applyMask(img image.Image, mask *image.Gray) *image.NRGBA {
	dst := imaging.Clone(img)
	w, h := dst.Bounds().Dx(), dst.Bounds().Dy()
	scaled := imaging.Resize(mask, w, h, imaging.Lanczos)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			off := y*dst.Stride + x*4
			m := uint32(scaled.Pix[y*scaled.Stride+x*4])
			a := uint32(dst.Pix[off+3])
			dst.Pix[off+3] = uint8(a * m / 255)
		}
	}
	return dst
}
