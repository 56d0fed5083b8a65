// Package nn runs inference for the small convolutional networks used by
// the tempo and meter classifiers.
//
// A model is a sequence of Keras-style layers operating on channels-last
// tensors. Models are stored in a compact container: a YAML header that
// describes the layer stack followed by the parameters in half precision.
// Parameter shapes are never stored; they are inferred from the layer stack
// and the input shape, and the payload length must match exactly.
package nn
