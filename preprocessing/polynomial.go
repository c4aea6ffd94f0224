// Package preprocessing provides feature transformations applied before a
// model sees the data.
package preprocessing

import (
	"fmt"
	"math"

	"github.com/YuminosukeSato/polyreg/core/model"
	"github.com/YuminosukeSato/polyreg/core/parallel"
	"github.com/YuminosukeSato/polyreg/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// PowerFeatures はサンプルの各特徴量を1乗からDegree乗まで展開する変換器
//
// 交差項は作らない。入力 [a, b] と Degree=3 に対して出力は
// [a, b, a², b², a³, b³] となり、列ブロック k-1 が k 乗に対応する。
type PowerFeatures struct {
	state *model.StateManager

	// Degree は展開する最大次数
	Degree int
}

var _ model.Transformer = (*PowerFeatures)(nil)

// NewPowerFeatures は新しいPowerFeaturesを作成する
//
// 使用例:
//
//	pf, err := preprocessing.NewPowerFeatures(3)
//	XPoly, err := pf.FitTransform(X)
func NewPowerFeatures(degree int) (*PowerFeatures, error) {
	if degree < 1 {
		return nil, errors.NewValidationError("degree", "must be at least 1", degree)
	}
	return &PowerFeatures{
		state:  model.NewStateManager(),
		Degree: degree,
	}, nil
}

// Fit は入力の特徴量数を記録する
func (p *PowerFeatures) Fit(X mat.Matrix) error {
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return errors.NewModelError("PowerFeatures.Fit", "empty data", errors.ErrEmptyData)
	}
	p.state.SetDimensions(c, r)
	p.state.SetFitted()
	return nil
}

// NFeaturesIn は学習時の入力特徴量数を返す
func (p *PowerFeatures) NFeaturesIn() int {
	nFeatures, _ := p.state.GetDimensions()
	return nFeatures
}

// NFeaturesOut は変換後の列数を返す
func (p *PowerFeatures) NFeaturesOut() int {
	return p.NFeaturesIn() * p.Degree
}

// Transform は X を n_samples × (n_features·Degree) の行列に展開する
func (p *PowerFeatures) Transform(X mat.Matrix) (mat.Matrix, error) {
	blocks, err := p.Powers(X)
	if err != nil {
		return nil, err
	}

	r, c := X.Dims()
	out := mat.NewDense(r, c*p.Degree, nil)
	for k, block := range blocks {
		out.Slice(0, r, k*c, (k+1)*c).(*mat.Dense).Copy(block)
	}
	return out, nil
}

// FitTransform はFitとTransformを続けて実行する
func (p *PowerFeatures) FitTransform(X mat.Matrix) (mat.Matrix, error) {
	if err := p.Fit(X); err != nil {
		return nil, err
	}
	return p.Transform(X)
}

// Powers は次数ごとに分けた行列を返す。戻り値の k-1 番目が X の要素ごとの k 乗。
// 回帰モデルは勾配計算で次数ごとのブロックを直接使う。
func (p *PowerFeatures) Powers(X mat.Matrix) ([]*mat.Dense, error) {
	if !p.state.IsFitted() {
		return nil, errors.NewNotFittedError("PowerFeatures", "Transform")
	}

	r, c := X.Dims()
	if nFeatures := p.NFeaturesIn(); c != nFeatures {
		return nil, errors.NewDimensionError("PowerFeatures.Transform", nFeatures, c, errors.AxisFeatures)
	}

	blocks := make([]*mat.Dense, p.Degree)
	for k := range blocks {
		blocks[k] = mat.NewDense(r, c, nil)
	}

	// 行ごとに独立なので大きな入力では並列に埋める
	parallel.ParallelizeWithThreshold(r, parallel.DefaultThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			for j := 0; j < c; j++ {
				x := X.At(i, j)
				for k := range blocks {
					blocks[k].Set(i, j, Pow(x, k+1))
				}
			}
		}
	})

	return blocks, nil
}

// GetParams は変換器のパラメータを返す
func (p *PowerFeatures) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"degree": p.Degree,
	}
}

// String は変換器の文字列表現を返す
func (p *PowerFeatures) String() string {
	if !p.state.IsFitted() {
		return fmt.Sprintf("PowerFeatures(degree=%d)", p.Degree)
	}
	return fmt.Sprintf("PowerFeatures(degree=%d, n_features_in=%d)", p.Degree, p.NFeaturesIn())
}

// Pow は x の k 乗を返す。学習時と予測時で同じ丸めになるよう、
// べき乗はすべてこの関数を通す。
func Pow(x float64, k int) float64 {
	if k == 1 {
		return x
	}
	return math.Pow(x, float64(k))
}

// PowVec は x の要素ごとの k 乗を dst に書き込んで返す。
// dst が nil または長さ不足の場合は新しく確保する。
func PowVec(dst, x []float64, k int) []float64 {
	if cap(dst) < len(x) {
		dst = make([]float64, len(x))
	}
	dst = dst[:len(x)]
	for i, v := range x {
		dst[i] = Pow(v, k)
	}
	return dst
}
