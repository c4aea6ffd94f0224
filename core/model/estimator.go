// Package model defines the estimator interfaces shared by polyreg packages
// and the fitted-state bookkeeping embedded in concrete models.
package model

import "gonum.org/v1/gonum/mat"

// VectorPredictor は単一サンプルの予測を行うモデルのインターフェース
type VectorPredictor interface {
	// Predict は1サンプル分の特徴量ベクトルから予測値を返す
	Predict(x []float64) (float64, error)
}

// BatchPredictor は行列単位で予測を行うモデルのインターフェース
type BatchPredictor interface {
	// PredictBatch はX の各行に対する予測値を返す
	PredictBatch(X mat.Matrix) (*mat.VecDense, error)
}

// Scorer は決定係数を計算できるモデルのインターフェース
type Scorer interface {
	// Score は予測の決定係数 R² を返す
	Score(X, y mat.Matrix) (float64, error)
}

// ParameterGetter はハイパーパラメータを公開するモデルのインターフェース
type ParameterGetter interface {
	// GetParams はモデルのハイパーパラメータを返す
	GetParams() map[string]interface{}
}

// ParameterExporter は学習済みパラメータをフラットな数値列として
// 出し入れできるモデルのインターフェース
type ParameterExporter interface {
	// GetParameters は係数ベクトル群と切片を返す
	GetParameters() [][]float64
	// SetParameters はGetParametersの出力からパラメータを復元する
	SetParameters(params [][]float64) error
}

// Regressor は回帰モデルが満たすインターフェースの組み合わせ
type Regressor interface {
	VectorPredictor
	BatchPredictor
	Scorer
	ParameterGetter
	ParameterExporter
}
