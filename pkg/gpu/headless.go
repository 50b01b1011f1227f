package gpu

// Headless is a Device with no graphics context behind it. It hands out
// handles and accepts every command without drawing anything, so batches
// can be built and filled where only their CPU-side data is read, as by the
// software renderer in pkg/render.
type Headless struct {
	next uint32
}

var _ Device = (*Headless)(nil)

func (h *Headless) name() uint32 {
	h.next++
	return h.next
}

func (h *Headless) CreateBuffer() Buffer                                     { return Buffer(h.name()) }
func (h *Headless) DeleteBuffer(Buffer)                                      {}
func (h *Headless) BindBuffer(BufferTarget, Buffer)                          {}
func (h *Headless) BufferData(BufferTarget, []byte) error                    { return nil }
func (h *Headless) CreateVertexArray() VertexArray                           { return VertexArray(h.name()) }
func (h *Headless) DeleteVertexArray(VertexArray)                            {}
func (h *Headless) BindVertexArray(VertexArray)                              {}
func (h *Headless) VertexAttribPointer(int, int, AttribType, bool, int, int) {}
func (h *Headless) VertexAttribDivisor(int, int)                             {}
func (h *Headless) CreateTexture() Texture                                   { return Texture(h.name()) }
func (h *Headless) DeleteTexture(Texture)                                    {}
func (h *Headless) TexImage1D(Texture, []byte) error                         { return nil }
func (h *Headless) BindTexture1D(int, Texture)                               {}
func (h *Headless) CompileShader(Stage, string) (Shader, error)              { return Shader(h.name()), nil }
func (h *Headless) DeleteShader(Shader)                                      {}
func (h *Headless) LinkProgram(...Shader) (ProgramID, error)                 { return ProgramID(h.name()), nil }
func (h *Headless) DeleteProgram(ProgramID)                                  {}
func (h *Headless) UseProgram(ProgramID)                                     {}
func (h *Headless) AttribLocation(ProgramID, string) int                     { return -1 }
func (h *Headless) UniformLocation(ProgramID, string) int                    { return -1 }
func (h *Headless) Uniform1i(int, int32)                                     {}
func (h *Headless) Uniform1f(int, float32)                                   {}
func (h *Headless) Uniform2f(int, [2]float32)                                {}
func (h *Headless) Uniform3f(int, [3]float32)                                {}
func (h *Headless) Uniform4f(int, [4]float32)                                {}
func (h *Headless) UniformMatrix4(int, [16]float32)                          {}
func (h *Headless) PatchVertices(int)                                        {}
func (h *Headless) DrawArrays(Primitive, int, int)                           {}
func (h *Headless) DrawArraysInstanced(Primitive, int, int, int)             {}
func (h *Headless) DrawElementsInstanced(Primitive, int, int)                {}
