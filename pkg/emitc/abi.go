package emitc

// runtimeHeader is the fixed preamble every assembled translation unit
// carries: the runtime ABI declarations from the external interface
// contract, plus two small driver helpers (stache_resolve, stache_autocall)
// that factor the context-stack walk and zero-arg-callable auto-invoke out
// of every call site so the emitted per-template functions stay
// straight-line C rather than re-unrolling the walk at each key reference.
const runtimeHeader = `/* Generated by stachec. Do not edit by hand. */
#include <stddef.h>
#include <stdint.h>
#include <string.h>

typedef struct writer writer_t;
typedef uintptr_t value_t;       /* opaque host handle */

/* Every tmpl_* function returns one of these instead of void, so a fault
 * discovered partway through a render has a channel out of the function
 * (and out of every calling template on its way back to the binding's
 * render entry point) distinct
 * from the writer_t buffer, which must be discarded rather than returned
 * to the host on a nonzero result. */
enum stache_fault {
	STACHE_OK = 0,
	STACHE_ERR_ARITY,   /* a resolved callable required one or more arguments */
	STACHE_ERR_TYPE,    /* reserved: host-reported dotted resolution against a non-container */
};

enum stache_kind {
	STACHE_NIL = 0,
	STACHE_BOOL,
	STACHE_NUM,
	STACHE_STR,
	STACHE_LIST,
	STACHE_HASH,
	STACHE_OBJ,
	STACHE_CALLABLE,
};

value_t lookup(value_t v, const char *key, size_t keylen, int *present);
value_t iter_next(value_t list, size_t i, int *done);
size_t  length(value_t list);
int     truthiness(value_t v);           /* 0 = falsy */
int     kind(value_t v);                 /* NIL|BOOL|NUM|STR|LIST|HASH|OBJ|CALLABLE */
value_t call0(value_t callable, int *arity_err);
void    writer_write(writer_t*, const char*, size_t);
void    writer_emit_escaped(writer_t*, value_t);
void    writer_emit_raw(writer_t*, value_t);

/* Returns a writer that prefixes every line written through it with
 * indent before forwarding to inner, so a partial's standalone-tag
 * indentation can be re-applied line by line without the compiler
 * needing to know writer_t's layout. Released (not closed — inner stays
 * open) with writer_end_indent once the partial call returns. */
writer_t *writer_with_indent(writer_t *inner, const char *indent, size_t indent_len);
void      writer_end_indent(writer_t *w);

/* Walks frames[nframes-1 .. 0] (top-down) looking for segments[0] to be
 * "present" (which is not the same as truthy: a key mapped to nil is
 * present and terminates the walk there); once bound, resolves the
 * remaining segments strictly inside that value. Missing subsegments
 * yield STACHE_NIL with *present left nonzero (segment 0 was found) but
 * the final value absent from its container — callers only act on the
 * return value, so this distinction is not surfaced further. */
static value_t stache_resolve(const value_t *frames, size_t nframes,
                               const char *const *segments, size_t nsegments,
                               int *present) {
	value_t v = 0;
	*present = 0;
	for (size_t i = nframes; i-- > 0;) {
		v = lookup(frames[i], segments[0], strlen(segments[0]), present);
		if (*present) {
			break;
		}
	}
	if (!*present) {
		return 0;
	}
	for (size_t i = 1; i < nsegments; i++) {
		int sub_present = 0;
		v = lookup(v, segments[i], strlen(segments[i]), &sub_present);
		if (!sub_present) {
			return 0;
		}
	}
	return v;
}

/* If v is a zero-arg callable, invokes it and returns its result in
 * place of v, per the ABI's "resolved attribute is a callable requiring
 * zero arguments" auto-invoke rule. *arity_err is set and STACHE_NIL is
 * returned if the callable requires arguments. */
static value_t stache_autocall(value_t v, int *arity_err) {
	*arity_err = 0;
	if (kind(v) != STACHE_CALLABLE) {
		return v;
	}
	value_t result = call0(v, arity_err);
	if (*arity_err) {
		return 0;
	}
	return result;
}
`

// rubyBindingGlue is appended when --emit=ruby is selected: the
// render(self, name, context) entry point a Ruby C extension's init
// function registers against the dispatch table, plus an extconf-style
// comment block documenting the expected build.
const rubyBindingGlue = `
/*
 * Ruby binding glue. Build against this translation unit with a Ruby C
 * extension's extconf.rb; the extension is responsible for implementing
 * lookup/iter_next/length/truthiness/kind/call0 against VALUE and for
 * calling stache_register_ruby(module) during Init_*.
 */
#include <ruby.h>

/* Implemented by the host runtime shim, not by this translation unit:
 * a writer_t that buffers into a growable byte array the shim owns. */
writer_t   *stache_writer_new(void);
const char *stache_writer_data(writer_t *);
size_t      stache_writer_len(writer_t *);
void        stache_writer_free(writer_t *);

/* Implemented by the assembler below: looks a mangled function pointer
 * up by logical template name, or returns NULL if unknown. */
int (*stache_dispatch(const char *name))(writer_t *, value_t);

static VALUE stache_rb_render(VALUE self, VALUE name, VALUE context) {
	const char *tmpl_name = StringValueCStr(name);
	int (*fn)(writer_t *, value_t) = stache_dispatch(tmpl_name);
	if (fn == NULL) {
		rb_raise(rb_eArgError, "unknown template: %s", tmpl_name);
	}
	writer_t *w = stache_writer_new();
	int fault = fn(w, (value_t)context);
	if (fault != STACHE_OK) {
		/* Discard whatever the render wrote before the fault; per the
		 * error-handling contract a faulted render returns no partial
		 * output, only a raised exception. */
		stache_writer_free(w);
		if (fault == STACHE_ERR_ARITY) {
			rb_raise(rb_eArgError, "template %s: a resolved callable requires arguments", tmpl_name);
		}
		rb_raise(rb_eTypeError, "template %s: value of unexpected type", tmpl_name);
	}
	VALUE result = rb_str_new(stache_writer_data(w), (long)stache_writer_len(w));
	stache_writer_free(w);
	return result;
}

void stache_register_ruby(VALUE mod) {
	rb_define_module_function(mod, "render", stache_rb_render, 2);
}
`
