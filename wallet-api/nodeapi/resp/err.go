package resp

var _ Error = (*err)(nil)

// Error is the body of every nodeapi response.
type Error interface {
	// WithData returns a copy carrying data.
	WithData(data interface{}) Error
	WithMsg(msg string) Error
	GetCode() int
}

type err struct {
	Code int         `json:"code"`
	Msg  string      `json:"msg"`
	Data interface{} `json:"data"`
}

func NewError(code int, msg string) Error {
	return &err{
		Code: code,
		Msg:  msg,
		Data: nil,
	}
}

func (e *err) WithData(data interface{}) Error {
	c := *e
	c.Data = data
	return &c
}

func (e *err) WithMsg(msg string) Error {
	c := *e
	c.Msg = e.Msg + ": " + msg
	return &c
}

func (e *err) GetCode() int {
	return e.Code
}
