package bcf2

import "fmt"

// toInt32Slice normalizes an arbitrary attribute value into a slice of
// observed integers, per the shapes C4 accepts: scalar, list, or
// primitive array.
func toInt32Slice(v interface{}) ([]int32, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case int:
		return []int32{int32(t)}, nil
	case int32:
		return []int32{t}, nil
	case int64:
		return []int32{int32(t)}, nil
	case []int:
		out := make([]int32, len(t))
		for i, x := range t {
			out[i] = int32(x)
		}
		return out, nil
	case []int32:
		return t, nil
	case []int64:
		out := make([]int32, len(t))
		for i, x := range t {
			out[i] = int32(x)
		}
		return out, nil
	case []interface{}:
		out := make([]int32, 0, len(t))
		for _, x := range t {
			vs, err := toInt32Slice(x)
			if err != nil {
				return nil, err
			}
			out = append(out, vs...)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: cannot interpret %T as an integer value", ErrIncompatibleValue, v)
	}
}

func toFloat32Slice(v interface{}) ([]float32, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case float32:
		return []float32{t}, nil
	case float64:
		return []float32{float32(t)}, nil
	case []float32:
		return t, nil
	case []float64:
		out := make([]float32, len(t))
		for i, x := range t {
			out[i] = float32(x)
		}
		return out, nil
	case []interface{}:
		out := make([]float32, 0, len(t))
		for _, x := range t {
			vs, err := toFloat32Slice(x)
			if err != nil {
				return nil, err
			}
			out = append(out, vs...)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: cannot interpret %T as a float value", ErrIncompatibleValue, v)
	}
}

func toStringSlice(v interface{}) ([]string, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case string:
		return []string{t}, nil
	case []string:
		return t, nil
	case []interface{}:
		out := make([]string, 0, len(t))
		for _, x := range t {
			vs, err := toStringSlice(x)
			if err != nil {
				return nil, err
			}
			out = append(out, vs...)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: cannot interpret %T as a string value", ErrIncompatibleValue, v)
	}
}

func toBool(v interface{}) (bool, error) {
	switch t := v.(type) {
	case nil:
		return false, nil
	case bool:
		return t, nil
	default:
		return false, fmt.Errorf("%w: cannot interpret %T as a Flag value", ErrIncompatibleValue, v)
	}
}

func int32Ptrs(vs []int32) []*int32 {
	out := make([]*int32, len(vs))
	for i := range vs {
		v := vs[i]
		out[i] = &v
	}
	return out
}

func float32Ptrs(vs []float32) []*float32 {
	out := make([]*float32, len(vs))
	for i := range vs {
		v := vs[i]
		out[i] = &v
	}
	return out
}
